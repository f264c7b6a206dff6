package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Modifier is a global priced add-on selectable per cart line. When
// LinkedProductID is set, each selected unit consumes DeductQuantity units of
// the linked product; otherwise it only affects the price.
type Modifier struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name            string          `gorm:"uniqueIndex;not null"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LinkedProductID *uuid.UUID      `gorm:"type:uuid;index"`
	DeductQuantity  int             `gorm:"not null"`
	Active          bool            `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	LinkedProduct *Product `gorm:"foreignKey:LinkedProductID"`
}

func (Modifier) TableName() string { return "modifiers" }

func (m *Modifier) BeforeCreate(*gorm.DB) error {
	m.ID = ensureID(m.ID)
	return nil
}
