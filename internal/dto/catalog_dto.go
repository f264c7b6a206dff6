package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name          string          `json:"name"           validate:"required,max=120"`
	Category      string          `json:"category"       validate:"required,max=60"`
	UnitPrice     decimal.Decimal `json:"unit_price"     validate:"min=0"`
	Cost          decimal.Decimal `json:"cost"           validate:"min=0"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
	TrackingMode  string          `json:"tracking_mode"  validate:"omitempty,oneof=stock_tracked made_to_order"`
	Available     *bool           `json:"available"`
	SupplierID    *string         `json:"supplier_id"    validate:"omitempty,uuid"`
}

// UpdateProductRequest edits catalog fields only. Stock changes go through
// the inventory adjustment endpoint.
type UpdateProductRequest struct {
	Name         *string          `json:"name"          validate:"omitempty,max=120"`
	Category     *string          `json:"category"      validate:"omitempty,max=60"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	Cost         *decimal.Decimal `json:"cost"`
	TrackingMode *string          `json:"tracking_mode" validate:"omitempty,oneof=stock_tracked made_to_order"`
	Available    *bool            `json:"available"`
	Active       *bool            `json:"active"`
	SupplierID   *string          `json:"supplier_id"   validate:"omitempty,uuid"`
}

type CreatePriceVariantRequest struct {
	Name          string          `json:"name"           validate:"required,max=60"`
	Price         decimal.Decimal `json:"price"          validate:"min=0"`
	Cost          decimal.Decimal `json:"cost"           validate:"min=0"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
}

type ModifierRequest struct {
	Name            string          `json:"name"              validate:"required,max=60"`
	Price           decimal.Decimal `json:"price"             validate:"min=0"`
	LinkedProductID *string         `json:"linked_product_id" validate:"omitempty,uuid"`
	DeductQuantity  int             `json:"deduct_quantity"   validate:"min=0"`
	Active          *bool           `json:"active"`
}

type LinkIngredientRequest struct {
	IngredientID    string `json:"ingredient_id"     validate:"required,uuid"`
	QuantityPerUnit int    `json:"quantity_per_unit" validate:"required,min=1"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=60"`
	Description *string `json:"description"`
}

type CreateSupplierRequest struct {
	Name  string  `json:"name"  validate:"required,max=120"`
	Phone *string `json:"phone"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductFilter struct {
	Name            string `form:"name"`
	Category        string `form:"category"`
	IncludeInactive bool   `form:"include_inactive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Cost          decimal.Decimal `json:"cost"`
	MarkupPercent decimal.Decimal `json:"markup_percent"`
	StockQuantity int             `json:"stock_quantity"`
	TrackingMode  string          `json:"tracking_mode"`
	Available     bool            `json:"available"`
	Active        bool            `json:"active"`
	SupplierID    *string         `json:"supplier_id"`
}

type PriceVariantResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	MarkupPercent decimal.Decimal `json:"markup_percent"`
	StockQuantity int             `json:"stock_quantity"`
}

type ModifierResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	LinkedProductID *string         `json:"linked_product_id"`
	DeductQuantity  int             `json:"deduct_quantity"`
	Active          bool            `json:"active"`
}

type IngredientResponse struct {
	IngredientID    string          `json:"ingredient_id"`
	Name            string          `json:"name"`
	QuantityPerUnit int             `json:"quantity_per_unit"`
	StockQuantity   int             `json:"stock_quantity"`
	Cost            decimal.Decimal `json:"cost"`
}

type IngredientCostResponse struct {
	ProductID string          `json:"product_id"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

type CategoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type SupplierResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}
