package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment methods accepted at checkout. Only cash requires a tendered amount.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentEWallet  = "e_wallet"
	PaymentTransfer = "transfer"
)

// Order is an immutable record of a completed checkout.
// Invariants: TotalAmount = Subtotal - DiscountAmount + TaxAmount and
// ChangeAmount = AmountTendered - TotalAmount (never negative).
type Order struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Number         int             `gorm:"uniqueIndex;not null"`
	CashierID      string          `gorm:"index;not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// TaxAmount is zero under the default configuration but always persisted.
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod  string          `gorm:"type:varchar(20);index;not null"`
	AmountTendered decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ChangeAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// OrderType is free-form: dine_in, take_out, regular, ...
	OrderType string    `gorm:"type:varchar(30);index;not null;default:'regular'"`
	CreatedAt time.Time `gorm:"index"`

	Lines []OrderLine `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	o.ID = ensureID(o.ID)
	return nil
}

// OrderLine snapshots the product, variant and modifiers by value so that later
// catalog edits do not rewrite history.
type OrderLine struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position      int             `gorm:"not null"`
	ProductID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductName   string          `gorm:"not null"`
	Quantity      int             `gorm:"not null"`
	BaseUnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// UnitPrice is Subtotal / Quantity, i.e. it spreads the flat modifier cost.
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VariantID   *uuid.UUID      `gorm:"type:uuid"`
	VariantName *string
	// Modifiers holds the structured JSON encoding. Rows written by older
	// releases of the file store may hold a flat comma-separated list of
	// names instead; sqlite keeps such text as-is. See DecodeModifiers.
	Modifiers datatypes.JSON
}

func (OrderLine) TableName() string { return "order_lines" }

func (l *OrderLine) BeforeCreate(*gorm.DB) error {
	l.ID = ensureID(l.ID)
	return nil
}
