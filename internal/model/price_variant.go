package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceVariant is a named alternate full price for a product (e.g. "Large").
// Price replaces the product's UnitPrice when selected; it is never added to it.
// Variant stock is counted independently from the parent product's stock.
type PriceVariant struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name          string          `gorm:"not null"`
	Cost          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MarkupPercent decimal.Decimal `gorm:"type:decimal(7,2);not null;default:0"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockQuantity int             `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (PriceVariant) TableName() string { return "price_variants" }

func (v *PriceVariant) BeforeCreate(*gorm.DB) error {
	v.ID = ensureID(v.ID)
	return nil
}
