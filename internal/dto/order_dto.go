package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ModifierChoiceRequest struct {
	ModifierID string `json:"modifier_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity"    validate:"required,min=1"`
}

type CartItemRequest struct {
	ProductID string                  `json:"product_id" validate:"required,uuid"`
	VariantID *string                 `json:"variant_id" validate:"omitempty,uuid"`
	Quantity  int                     `json:"quantity"   validate:"required,min=1"`
	Modifiers []ModifierChoiceRequest `json:"modifiers"  validate:"dive"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type PaymentRequest struct {
	CashierID      string           `json:"cashier_id"      validate:"required"`
	OrderType      string           `json:"order_type"      validate:"omitempty,max=30"`
	PaymentMethod  string           `json:"payment_method"  validate:"required,oneof=cash card e_wallet transfer"`
	AmountTendered *decimal.Decimal `json:"amount_tendered"`
	DiscountAmount decimal.Decimal  `json:"discount_amount" validate:"min=0"`
}

// CreateOrderRequest prices and commits a whole cart in one call.
type CreateOrderRequest struct {
	PaymentRequest
	Items []CartItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderFilter struct {
	From  string `form:"from"`  // YYYY-MM-DD, inclusive
	To    string `form:"to"`    // YYYY-MM-DD, inclusive
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SelectedModifierResponse struct {
	ModifierID      *string         `json:"modifier_id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	LinkedProductID *string         `json:"linked_product_id"`
	DeductQuantity  int             `json:"deduct_quantity"`
}

type CartLineResponse struct {
	ID            int                        `json:"id"`
	ProductID     string                     `json:"product_id"`
	ProductName   string                     `json:"product_name"`
	VariantID     *string                    `json:"variant_id"`
	VariantName   *string                    `json:"variant_name"`
	Quantity      int                        `json:"quantity"`
	BaseUnitPrice decimal.Decimal            `json:"base_unit_price"`
	UnitPrice     decimal.Decimal            `json:"unit_price"`
	ModifierTotal decimal.Decimal            `json:"modifier_total"`
	Subtotal      decimal.Decimal            `json:"subtotal"`
	Modifiers     []SelectedModifierResponse `json:"modifiers"`
}

type CartResponse struct {
	Lines    []CartLineResponse `json:"lines"`
	Subtotal decimal.Decimal    `json:"subtotal"`
	Tax      decimal.Decimal    `json:"tax"`
	Total    decimal.Decimal    `json:"total"`
}

type OrderLineResponse struct {
	Position      int                        `json:"position"`
	ProductID     string                     `json:"product_id"`
	ProductName   string                     `json:"product_name"`
	VariantID     *string                    `json:"variant_id"`
	VariantName   *string                    `json:"variant_name"`
	Quantity      int                        `json:"quantity"`
	BaseUnitPrice decimal.Decimal            `json:"base_unit_price"`
	UnitPrice     decimal.Decimal            `json:"unit_price"`
	Subtotal      decimal.Decimal            `json:"subtotal"`
	Modifiers     []SelectedModifierResponse `json:"modifiers"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	Number         int                 `json:"number"`
	CashierID      string              `json:"cashier_id"`
	OrderType      string              `json:"order_type"`
	PaymentMethod  string              `json:"payment_method"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	TaxAmount      decimal.Decimal     `json:"tax_amount"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	AmountTendered decimal.Decimal     `json:"amount_tendered"`
	ChangeAmount   decimal.Decimal     `json:"change_amount"`
	Lines          []OrderLineResponse `json:"lines"`
	CreatedAt      string              `json:"created_at"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
