package dto

type AdjustStockRequest struct {
	VariantID *string `json:"variant_id" validate:"omitempty,uuid"`
	Kind      string  `json:"kind"       validate:"required,oneof=manual_add manual_remove manual_set"`
	Quantity  int     `json:"quantity"   validate:"min=0"`
	Reason    string  `json:"reason"     validate:"required,max=200"`
	UserID    string  `json:"user_id"    validate:"required"`
}

type AdjustmentFilter struct {
	ProductID string `form:"product_id"`
	Kind      string `form:"kind"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type StockAdjustmentResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	VariantID   *string `json:"variant_id"`
	Kind        string  `json:"kind"`
	Delta       int     `json:"delta"`
	StockBefore int     `json:"stock_before"`
	StockAfter  int     `json:"stock_after"`
	Reason      string  `json:"reason"`
	UserID      string  `json:"user_id"`
	OrderID     *string `json:"order_id"`
	CreatedAt   string  `json:"created_at"`
}

type AdjustmentListResponse struct {
	Data  []StockAdjustmentResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}

type StockListQuery struct {
	Threshold int `form:"threshold" validate:"min=0"`
}
