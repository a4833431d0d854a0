package usecase

import (
	"context"
	"errors"

	"carmint/internal/domain"
	"carmint/internal/log"
)

type MintAssetRequest struct {
	Record domain.InspectionRecord
}

type MintAssetResponse struct {
	TxHash    string
	AssetID   string
	Duplicate bool
}

// MintAsset runs the minting pipeline: validate, derive the asset identity,
// resolve the policy, then assemble, sign, and submit one transaction built
// from a fresh UTxO snapshot. Receipts and the admission gate are optional
// collaborators; everything else is required.
type MintAsset struct {
	WalletAddress string

	Policy    PolicyResolver
	UTxOs     UTxOSource
	Assembler TxAssembler
	Signer    TxSigner
	Submitter TxSubmitter
	Receipts  MintReceiptRepository
	Gate      AdmissionGate
}

func (uc *MintAsset) Execute(ctx context.Context, req MintAssetRequest) (*MintAssetResponse, error) {
	if err := req.Record.Validate(); err != nil {
		return nil, err
	}

	policy, err := uc.Policy.Resolve(uc.WalletAddress)
	if err != nil {
		return nil, err
	}
	identity := domain.DeriveIdentity(req.Record, policy.ID)
	logger := log.WithComponent("mint")

	if uc.Gate != nil {
		release, err := uc.Gate.Acquire(ctx, policy.ID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	// The dedup lookup runs under the gate: a concurrent request for the
	// same triple waits here and then finds the receipt the first one wrote.
	if uc.Receipts != nil {
		receipt, err := uc.Receipts.GetByAssetID(ctx, identity.AssetID)
		if err == nil {
			logger.Info().
				Str("asset_id", identity.AssetID).
				Str("tx_hash", receipt.TxHash).
				Msg("duplicate triple, returning prior receipt")
			return &MintAssetResponse{TxHash: receipt.TxHash, AssetID: receipt.AssetID, Duplicate: true}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	utxos, err := uc.UTxOs.ListUTxOs(ctx, uc.WalletAddress)
	if err != nil {
		return nil, err
	}

	unsigned, err := uc.Assembler.Assemble(domain.AssemblyRequest{
		Policy:        policy,
		TokenNameHex:  identity.TokenNameHex,
		Metadata:      domain.BuildMetadataEnvelope(identity, req.Record),
		ChangeAddress: uc.WalletAddress,
		UTxOs:         utxos,
	})
	if err != nil {
		return nil, err
	}

	signed, err := uc.Signer.Sign(unsigned)
	if err != nil {
		return nil, err
	}

	txHash, err := uc.Submitter.Submit(ctx, signed)
	if err != nil {
		// Nothing is persisted for a failed submission; resubmitting the
		// request re-derives the same identity.
		return nil, err
	}

	logger.Info().
		Str("asset_id", identity.AssetID).
		Str("tx_hash", txHash).
		Uint64("fee", unsigned.Fee).
		Msg("minted inspection asset")

	if uc.Receipts != nil {
		if err := uc.Receipts.Create(ctx, domain.MintReceipt{
			AssetID:        identity.AssetID,
			PolicyID:       identity.PolicyID,
			TokenName:      identity.TokenName,
			TxHash:         txHash,
			VehicleNumber:  req.Record.VehicleNumber,
			InspectionDate: req.Record.InspectionDate,
			InspectorID:    req.Record.InspectorID,
		}); err != nil {
			// The mint already happened; a receipt write failure must not
			// fail the request.
			logger.Warn().Err(err).Str("asset_id", identity.AssetID).Msg("receipt write failed")
		}
	}

	return &MintAssetResponse{TxHash: txHash, AssetID: identity.AssetID}, nil
}
