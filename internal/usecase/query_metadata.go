package usecase

import (
	"context"
	"fmt"

	"carmint/internal/domain"
)

// QueryMetadata reads stored metadata and asset information from the
// indexer. Each call reflects current indexer state; nothing is cached or
// retried here.
type QueryMetadata struct {
	Querier MetadataQuerier
}

func (uc *QueryMetadata) ByTx(ctx context.Context, txHash string) ([]domain.LabeledMetadata, error) {
	if txHash == "" {
		return nil, fmt.Errorf("%w: txHash is required", domain.ErrInvalidRecord)
	}
	return uc.Querier.MetadataByTx(ctx, txHash)
}

func (uc *QueryMetadata) Asset(ctx context.Context, assetID string) (*domain.AssetInfo, error) {
	if assetID == "" {
		return nil, fmt.Errorf("%w: assetId is required", domain.ErrInvalidRecord)
	}
	return uc.Querier.AssetInfo(ctx, assetID)
}
