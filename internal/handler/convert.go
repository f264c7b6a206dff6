package handler

import (
	"time"

	"counterpos/internal/dto"
	"counterpos/internal/model"
	"counterpos/internal/service"

	"github.com/google/uuid"
)

func toCartItem(req dto.CartItemRequest) (service.CartItem, error) {
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return service.CartItem{}, &service.ValidationError{Field: "product_id", Message: "invalid id"}
	}
	item := service.CartItem{ProductID: pid, VariantID: optionalID(req.VariantID), Quantity: req.Quantity}
	for _, m := range req.Modifiers {
		mid, err := uuid.Parse(m.ModifierID)
		if err != nil {
			return service.CartItem{}, &service.ValidationError{Field: "modifier_id", Message: "invalid id"}
		}
		item.Modifiers = append(item.Modifiers, service.ModifierChoice{ModifierID: mid, Quantity: m.Quantity})
	}
	return item, nil
}

func toPayment(req dto.PaymentRequest) service.Payment {
	return service.Payment{
		CashierID: req.CashierID,
		OrderType: req.OrderType,
		Method:    req.PaymentMethod,
		Tendered:  req.AmountTendered,
		Discount:  req.DiscountAmount,
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func modifiersToResponse(mods []model.SelectedModifier) []dto.SelectedModifierResponse {
	out := make([]dto.SelectedModifierResponse, 0, len(mods))
	for _, m := range mods {
		out = append(out, dto.SelectedModifierResponse{
			ModifierID:      uuidString(m.ModifierID),
			Name:            m.Name,
			Price:           m.Price,
			Quantity:        m.Quantity,
			LinkedProductID: uuidString(m.LinkedProductID),
			DeductQuantity:  m.DeductQuantity,
		})
	}
	return out
}

func cartLineToResponse(l service.CartLine) dto.CartLineResponse {
	r := dto.CartLineResponse{
		ID:            l.ID,
		ProductID:     l.Product.ID.String(),
		ProductName:   l.Product.Name,
		Quantity:      l.Quantity,
		BaseUnitPrice: l.Price.BaseUnitPrice,
		UnitPrice:     l.Price.UnitPrice,
		ModifierTotal: l.Price.ModifierTotal,
		Subtotal:      l.Price.Subtotal,
		Modifiers:     modifiersToResponse(l.Modifiers),
	}
	if l.Variant != nil {
		id, name := l.Variant.ID.String(), l.Variant.Name
		r.VariantID = &id
		r.VariantName = &name
	}
	return r
}

func cartToResponse(lines []service.CartLine, totals service.OrderTotals) dto.CartResponse {
	out := dto.CartResponse{Subtotal: totals.Subtotal, Tax: totals.Tax, Total: totals.Total}
	out.Lines = make([]dto.CartLineResponse, 0, len(lines))
	for _, l := range lines {
		out.Lines = append(out.Lines, cartLineToResponse(l))
	}
	return out
}

// orderToResponse renders a stored order. Modifier columns that do not decode
// render as an empty list; reports surface those rows as warnings.
func orderToResponse(o *model.Order) dto.OrderResponse {
	r := dto.OrderResponse{
		ID:             o.ID.String(),
		Number:         o.Number,
		CashierID:      o.CashierID,
		OrderType:      o.OrderType,
		PaymentMethod:  o.PaymentMethod,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		TaxAmount:      o.TaxAmount,
		TotalAmount:    o.TotalAmount,
		AmountTendered: o.AmountTendered,
		ChangeAmount:   o.ChangeAmount,
		CreatedAt:      o.CreatedAt.UTC().Format(time.RFC3339),
	}
	r.Lines = make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		var mods []model.SelectedModifier
		if enc, err := model.DecodeModifiers(l.Modifiers); err == nil {
			mods = enc.Normalize(model.NewModifierIndex(nil))
		}
		r.Lines = append(r.Lines, dto.OrderLineResponse{
			Position:      l.Position,
			ProductID:     l.ProductID.String(),
			ProductName:   l.ProductName,
			VariantID:     uuidString(l.VariantID),
			VariantName:   l.VariantName,
			Quantity:      l.Quantity,
			BaseUnitPrice: l.BaseUnitPrice,
			UnitPrice:     l.UnitPrice,
			Subtotal:      l.Subtotal,
			Modifiers:     modifiersToResponse(mods),
		})
	}
	return r
}

func adjustmentToResponse(a *model.StockAdjustment) dto.StockAdjustmentResponse {
	return dto.StockAdjustmentResponse{
		ID:          a.ID.String(),
		ProductID:   a.ProductID.String(),
		VariantID:   uuidString(a.VariantID),
		Kind:        a.Kind,
		Delta:       a.Delta,
		StockBefore: a.StockBefore,
		StockAfter:  a.StockAfter,
		Reason:      a.Reason,
		UserID:      a.UserID,
		OrderID:     uuidString(a.OrderID),
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
