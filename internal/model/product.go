package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TrackingMode decides what governs a product's sellability.
type TrackingMode string

const (
	// StockTracked products are sellable while StockQuantity > 0.
	StockTracked TrackingMode = "stock_tracked"
	// MadeToOrder products are sellable while Available is set; stock is ignored.
	MadeToOrder TrackingMode = "made_to_order"
)

// Valid reports whether m is a known tracking mode.
func (m TrackingMode) Valid() bool {
	return m == StockTracked || m == MadeToOrder
}

// Product is a sellable catalog item. A product may also act as an ingredient
// of other products (ProductIngredient) or as the inventory behind a Modifier.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name          string          `gorm:"index;not null"`
	Category      string          `gorm:"index;not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cost          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MarkupPercent decimal.Decimal `gorm:"type:decimal(7,2);not null;default:0"`
	StockQuantity int             `gorm:"not null;default:0"`
	TrackingMode  TrackingMode    `gorm:"type:varchar(20);not null;default:'stock_tracked'"`
	// Available is only consulted when TrackingMode is MadeToOrder.
	Available  bool       `gorm:"not null"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index"`
	Active     bool       `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

// IsStockTracked is shorthand used by sellability checks and analytics.
func (p *Product) IsStockTracked() bool { return p.TrackingMode == StockTracked }
