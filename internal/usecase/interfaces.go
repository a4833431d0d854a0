package usecase

import (
	"context"

	"carmint/internal/domain"
)

// PolicyResolver derives the minting authorization for a signing address.
type PolicyResolver interface {
	Resolve(address string) (domain.MintPolicy, error)
}

// UTxOSource lists the spendable outputs of an address. Every mint fetches
// a fresh snapshot; nothing is cached between requests.
type UTxOSource interface {
	ListUTxOs(ctx context.Context, address string) ([]domain.UTxO, error)
}

// TxAssembler builds one balanced unsigned minting transaction.
type TxAssembler interface {
	Assemble(req domain.AssemblyRequest) (domain.UnsignedTx, error)
}

// TxSigner witnesses an unsigned transaction with the wallet key.
type TxSigner interface {
	Sign(unsigned domain.UnsignedTx) (domain.SignedTx, error)
}

// TxSubmitter broadcasts a signed transaction, at most once, no retries.
type TxSubmitter interface {
	Submit(ctx context.Context, signed domain.SignedTx) (string, error)
}

// MetadataQuerier reads previously stored metadata from the indexer.
type MetadataQuerier interface {
	MetadataByTx(ctx context.Context, txHash string) ([]domain.LabeledMetadata, error)
	AssetInfo(ctx context.Context, assetID string) (*domain.AssetInfo, error)
}

// MintReceiptRepository remembers issued identities so a duplicate triple
// answers with the original transaction instead of minting again.
type MintReceiptRepository interface {
	GetByAssetID(ctx context.Context, assetID string) (*domain.MintReceipt, error)
	Create(ctx context.Context, receipt domain.MintReceipt) error
}

// AdmissionGate serializes pipeline execution per signing identity.
type AdmissionGate interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
