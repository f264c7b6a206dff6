package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Adjustment kinds recorded in the stock log.
const (
	AdjustOrder  = "order"
	AdjustAdd    = "manual_add"
	AdjustRemove = "manual_remove"
	AdjustSet    = "manual_set"
)

// StockAdjustment logs every stock mutation, whether it came from an order
// commit or from a manual add/remove/set. Delta is the requested change;
// StockAfter reflects the floor-at-zero rule, so it may differ from
// StockBefore+Delta.
type StockAdjustment struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	VariantID   *uuid.UUID `gorm:"type:uuid;index"`
	Kind        string     `gorm:"type:varchar(20);not null;index"`
	Delta       int        `gorm:"not null"`
	StockBefore int        `gorm:"not null"`
	StockAfter  int        `gorm:"not null"`
	Reason      string
	UserID      string     `gorm:"index"`
	OrderID     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time
}

func (StockAdjustment) TableName() string { return "stock_adjustments" }

func (a *StockAdjustment) BeforeCreate(*gorm.DB) error {
	a.ID = ensureID(a.ID)
	return nil
}

// StockTarget names one stock counter: a product's own stock or, when
// VariantID is set, the independent stock of one of its price variants.
// It is comparable so deduction plans can sum per counter.
type StockTarget struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
}

func ProductTarget(id uuid.UUID) StockTarget { return StockTarget{ProductID: id} }

func VariantTarget(productID, variantID uuid.UUID) StockTarget {
	return StockTarget{ProductID: productID, VariantID: variantID}
}

// IsVariant reports whether the target is a variant counter.
func (t StockTarget) IsVariant() bool { return t.VariantID != uuid.Nil }
