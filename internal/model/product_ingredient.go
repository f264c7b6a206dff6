package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductIngredient is a bill-of-materials edge: selling one unit of the
// parent consumes QuantityPerUnit units of the ingredient.
type ProductIngredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_product_ingredient;not null"`
	IngredientID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_product_ingredient;not null"`
	QuantityPerUnit int       `gorm:"not null"`

	Product    *Product `gorm:"foreignKey:ProductID"`
	Ingredient *Product `gorm:"foreignKey:IngredientID"`
}

func (ProductIngredient) TableName() string { return "product_ingredients" }

func (e *ProductIngredient) BeforeCreate(*gorm.DB) error {
	e.ID = ensureID(e.ID)
	return nil
}
