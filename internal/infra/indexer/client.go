// Package indexer adapts the Blockfrost API to the collaborator interfaces
// the mint and query pipelines consume: UTxO listing, transaction
// submission, and metadata/asset lookups.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"carmint/internal/domain"

	"github.com/blockfrost/blockfrost-go"
)

const lovelaceUnit = "lovelace"

// api is the slice of the Blockfrost client the adapter uses. Narrowing it
// keeps tests independent of the network.
type api interface {
	AddressUTXOs(ctx context.Context, address string, query blockfrost.APIQueryParams) ([]blockfrost.AddressUTXO, error)
	TransactionMetadata(ctx context.Context, hash string) ([]blockfrost.TransactionMetadata, error)
	Asset(ctx context.Context, asset string) (blockfrost.Asset, error)
	TransactionSubmit(ctx context.Context, cbor []byte) (string, error)
}

type Client struct {
	api api
}

func NewClient(projectID, server string) *Client {
	return &Client{api: blockfrost.NewAPIClient(blockfrost.APIClientOptions{
		ProjectID: projectID,
		Server:    server,
	})}
}

func newClientWithAPI(a api) *Client {
	return &Client{api: a}
}

// ListUTxOs returns the spendable outputs at the address. An address the
// indexer has never seen is reported as empty, not as an error.
func (c *Client) ListUTxOs(ctx context.Context, address string) ([]domain.UTxO, error) {
	raw, err := c.api.AddressUTXOs(ctx, address, blockfrost.APIQueryParams{})
	if err != nil {
		qerr := upstreamError(err)
		var upstream *domain.QueryError
		if errors.As(qerr, &upstream) && upstream.Status == 404 {
			return nil, nil
		}
		return nil, qerr
	}
	utxos := make([]domain.UTxO, 0, len(raw))
	for _, u := range raw {
		utxo := domain.UTxO{
			TxHash: u.TxHash,
			Index:  uint32(u.OutputIndex),
		}
		for _, amount := range u.Amount {
			qty, err := strconv.ParseUint(amount.Quantity, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("utxo %s#%d: quantity %q: %w", u.TxHash, u.OutputIndex, amount.Quantity, err)
			}
			if amount.Unit == lovelaceUnit {
				utxo.Value += qty
				continue
			}
			if utxo.Assets == nil {
				utxo.Assets = make(map[string]uint64)
			}
			utxo.Assets[amount.Unit] += qty
		}
		utxos = append(utxos, utxo)
	}
	return utxos, nil
}

// Submit broadcasts the signed transaction. Rejections, including UTxO
// conflicts from a concurrent spend, surface as ErrSubmission with the
// upstream detail attached; nothing is retried here.
func (c *Client) Submit(ctx context.Context, signed domain.SignedTx) (string, error) {
	hash, err := c.api.TransactionSubmit(ctx, signed.CBOR)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSubmission, upstreamError(err))
	}
	if hash == "" {
		hash = signed.Hash
	}
	return hash, nil
}

// MetadataByTx fetches the ordered metadata entries attached to a
// transaction.
func (c *Client) MetadataByTx(ctx context.Context, txHash string) ([]domain.LabeledMetadata, error) {
	raw, err := c.api.TransactionMetadata(ctx, txHash)
	if err != nil {
		return nil, upstreamError(err)
	}
	out := make([]domain.LabeledMetadata, 0, len(raw))
	for _, entry := range raw {
		out = append(out, domain.LabeledMetadata{
			Label:        entry.Label,
			JSONMetadata: entry.JsonMetadata,
		})
	}
	return out, nil
}

// AssetInfo fetches ledger attributes and on-chain metadata for an asset id.
func (c *Client) AssetInfo(ctx context.Context, assetID string) (*domain.AssetInfo, error) {
	asset, err := c.api.Asset(ctx, assetID)
	if err != nil {
		return nil, upstreamError(err)
	}
	return &domain.AssetInfo{
		Asset:             asset.Asset,
		PolicyID:          asset.PolicyId,
		AssetName:         asset.AssetName,
		Fingerprint:       asset.Fingerprint,
		Quantity:          asset.Quantity,
		InitialMintTxHash: asset.InitialMintTxHash,
		OnchainMetadata:   asset.OnchainMetadata,
	}, nil
}

// upstreamError converts a Blockfrost error into a QueryError carrying the
// upstream status so callers can pass it through unchanged.
func upstreamError(err error) error {
	var apiErr *blockfrost.APIError
	if !errors.As(err, &apiErr) {
		return &domain.QueryError{Status: 502, Message: err.Error()}
	}
	switch resp := apiErr.Response.(type) {
	case blockfrost.BadRequest:
		return &domain.QueryError{Status: resp.StatusCode, Message: resp.Message}
	case blockfrost.NotFound:
		return &domain.QueryError{Status: resp.StatusCode, Message: resp.Message}
	case blockfrost.OverusageLimit:
		return &domain.QueryError{Status: resp.StatusCode, Message: resp.Message}
	case blockfrost.InternalServerError:
		return &domain.QueryError{Status: resp.StatusCode, Message: resp.Message}
	default:
		return &domain.QueryError{Status: 502, Message: apiErr.Error()}
	}
}
