package service

import (
	"counterpos/internal/model"

	"github.com/shopspring/decimal"
)

// LinePrice is the priced result for one cart line.
type LinePrice struct {
	// UnitPrice is Subtotal / quantity, the effective per-unit price shown on
	// receipts. It includes the line's share of the modifier charge.
	UnitPrice decimal.Decimal `json:"unit_price"`
	// BaseUnitPrice is the variant price when one is selected, else the
	// product's unit price.
	BaseUnitPrice decimal.Decimal `json:"base_unit_price"`
	ModifierTotal decimal.Decimal `json:"modifier_total"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// unitPricePlaces matches the order_lines.unit_price column scale.
const unitPricePlaces = 4

// PriceLine prices one line:
//
//	subtotal = base × quantity + Σ(modifier.price × modifier.quantity)
//
// The modifier charge is flat per line; it is not multiplied by quantity.
// A selected variant's price replaces the product price.
func PriceLine(product *model.Product, quantity int, variant *model.PriceVariant, mods []model.SelectedModifier) (LinePrice, error) {
	if product == nil {
		return LinePrice{}, validationError("product_id", "product is required")
	}
	if quantity < 1 {
		return LinePrice{}, validationError("quantity", "must be at least 1, got %d", quantity)
	}

	base := product.UnitPrice
	if variant != nil {
		if variant.ProductID != product.ID {
			return LinePrice{}, validationError("variant_id", "variant %q does not belong to %s", variant.Name, product.Name)
		}
		base = variant.Price
	}

	modTotal := decimal.Zero
	for _, m := range mods {
		if m.Quantity < 1 {
			return LinePrice{}, validationError("modifiers", "quantity of %q must be at least 1", m.Name)
		}
		modTotal = modTotal.Add(m.Price.Mul(decimal.NewFromInt(int64(m.Quantity))))
	}

	qty := decimal.NewFromInt(int64(quantity))
	subtotal := base.Mul(qty).Add(modTotal)
	return LinePrice{
		UnitPrice:     subtotal.DivRound(qty, unitPricePlaces),
		BaseUnitPrice: base,
		ModifierTotal: modTotal,
		Subtotal:      subtotal,
	}, nil
}

// OrderTotals is the order-level price summary.
type OrderTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// PriceOrder sums line subtotals and applies
//
//	total = subtotal - discount + tax,  tax = (subtotal - discount) × taxRate
//
// rounded to cents. taxRate is zero in the default configuration.
func PriceOrder(lines []LinePrice, discount, taxRate decimal.Decimal) (OrderTotals, error) {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
	}
	if discount.IsNegative() {
		return OrderTotals{}, validationError("discount_amount", "must not be negative")
	}
	if discount.GreaterThan(subtotal) {
		return OrderTotals{}, validationError("discount_amount", "exceeds order subtotal %s", subtotal.StringFixed(2))
	}
	if taxRate.IsNegative() {
		return OrderTotals{}, validationError("tax_rate", "must not be negative")
	}

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxRate).Round(2)
	return OrderTotals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    taxable.Add(tax),
	}, nil
}
