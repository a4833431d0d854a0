package db

import "time"

type MintReceiptModel struct {
	AssetID        string    `gorm:"primaryKey"`
	PolicyID       string    `gorm:"index;not null"`
	TokenName      string    `gorm:"index;not null"`
	TxHash         string    `gorm:"not null"`
	VehicleNumber  string    `gorm:"not null"`
	InspectionDate string    `gorm:"not null"`
	InspectorID    string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (MintReceiptModel) TableName() string {
	return "mint_receipts"
}
