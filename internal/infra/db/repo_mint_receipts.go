package db

import (
	"context"
	"errors"
	"time"

	"carmint/internal/domain"

	"gorm.io/gorm"
)

var errDBUnavailable = errors.New("database unavailable")

type MintReceiptRepository struct {
	db *gorm.DB
}

func NewMintReceiptRepository(db *gorm.DB) *MintReceiptRepository {
	return &MintReceiptRepository{db: db}
}

func (r *MintReceiptRepository) GetByAssetID(ctx context.Context, assetID string) (*domain.MintReceipt, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model MintReceiptModel
	err := r.db.WithContext(ctx).First(&model, "asset_id = ?", assetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	receipt := receiptFromModel(model)
	return &receipt, nil
}

func (r *MintReceiptRepository) Create(ctx context.Context, receipt domain.MintReceipt) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if receipt.AssetID == "" {
		return errors.New("asset_id is required")
	}
	if receipt.TxHash == "" {
		return errors.New("tx_hash is required")
	}
	model := MintReceiptModel{
		AssetID:        receipt.AssetID,
		PolicyID:       receipt.PolicyID,
		TokenName:      receipt.TokenName,
		TxHash:         receipt.TxHash,
		VehicleNumber:  receipt.VehicleNumber,
		InspectionDate: receipt.InspectionDate,
		InspectorID:    receipt.InspectorID,
		CreatedAt:      time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func receiptFromModel(model MintReceiptModel) domain.MintReceipt {
	return domain.MintReceipt{
		AssetID:        model.AssetID,
		PolicyID:       model.PolicyID,
		TokenName:      model.TokenName,
		TxHash:         model.TxHash,
		VehicleNumber:  model.VehicleNumber,
		InspectionDate: model.InspectionDate,
		InspectorID:    model.InspectorID,
		CreatedAt:      model.CreatedAt,
	}
}
