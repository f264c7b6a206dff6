package service

import (
	"context"
	"fmt"
	"strings"

	"counterpos/internal/model"
	"counterpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ModifierChoice selects a catalog modifier for a cart line.
type ModifierChoice struct {
	ModifierID uuid.UUID
	Quantity   int
}

// CartItem is the input to CartSession.Add and Replace.
type CartItem struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
	Modifiers []ModifierChoice
}

// CartLine is a priced, resolved line. Product, Variant and Modifiers are
// snapshots taken when the line was added.
type CartLine struct {
	ID        int
	Product   model.Product
	Variant   *model.PriceVariant
	Quantity  int
	Modifiers []model.SelectedModifier
	Price     LinePrice
}

func (l CartLine) planLine() PlanLine {
	pl := PlanLine{ProductID: l.Product.ID, Quantity: l.Quantity, Modifiers: l.Modifiers}
	if l.Variant != nil {
		id := l.Variant.ID
		pl.VariantID = &id
	}
	return pl
}

// CartSession is the mutable cart of one register. It is not safe for
// concurrent use; the owner serializes access.
type CartSession struct {
	catalog repository.CatalogRepository
	checker *AvailabilityChecker
	taxRate decimal.Decimal
	lines   []CartLine
	seq     int
}

func NewCartSession(catalog repository.CatalogRepository, taxRate decimal.Decimal) *CartSession {
	return &CartSession{
		catalog: catalog,
		checker: NewAvailabilityChecker(catalog),
		taxRate: taxRate,
	}
}

// Add resolves, prices and availability-checks item, then appends it.
func (c *CartSession) Add(ctx context.Context, item CartItem) (CartLine, error) {
	line, err := c.build(ctx, item, -1)
	if err != nil {
		return CartLine{}, err
	}
	c.seq++
	line.ID = c.seq
	c.lines = append(c.lines, line)
	return line, nil
}

// Replace swaps the line with the given id for item, keeping its position.
func (c *CartSession) Replace(ctx context.Context, id int, item CartItem) (CartLine, error) {
	i, err := c.indexOf(id)
	if err != nil {
		return CartLine{}, err
	}
	line, err := c.build(ctx, item, i)
	if err != nil {
		return CartLine{}, err
	}
	line.ID = id
	c.lines[i] = line
	return line, nil
}

// SetQuantity changes a line's quantity and reprices it. Increases are
// availability-checked; decreases always succeed.
func (c *CartSession) SetQuantity(ctx context.Context, id, quantity int) (CartLine, error) {
	i, err := c.indexOf(id)
	if err != nil {
		return CartLine{}, err
	}
	cur := c.lines[i]
	if quantity < 1 {
		return CartLine{}, validationError("quantity", "must be at least 1, got %d", quantity)
	}
	if quantity > cur.Quantity {
		cand := cur.planLine()
		cand.Quantity = quantity
		if err := c.checker.Check(ctx, cand, c.usage(i, cand)); err != nil {
			return CartLine{}, err
		}
	}
	price, err := PriceLine(&cur.Product, quantity, cur.Variant, cur.Modifiers)
	if err != nil {
		return CartLine{}, err
	}
	cur.Quantity = quantity
	cur.Price = price
	c.lines[i] = cur
	return cur, nil
}

func (c *CartSession) Remove(id int) error {
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// Lines returns a copy of the current lines in cart order.
func (c *CartSession) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *CartSession) Len() int { return len(c.lines) }

func (c *CartSession) Totals(discount decimal.Decimal) (OrderTotals, error) {
	prices := make([]LinePrice, 0, len(c.lines))
	for _, l := range c.lines {
		prices = append(prices, l.Price)
	}
	return PriceOrder(prices, discount, c.taxRate)
}

func (c *CartSession) Clear() {
	c.lines = nil
}

// Payment captures how the customer pays for the cart.
type Payment struct {
	CashierID string
	OrderType string
	Method    string
	// Tendered is required for cash. Other methods are charged the exact total.
	Tendered *decimal.Decimal
	Discount decimal.Decimal
}

// OrderDraft is a fully priced and validated order ready for commit.
type OrderDraft struct {
	CashierID     string
	OrderType     string
	PaymentMethod string
	Lines         []CartLine
	Totals        OrderTotals
	Tendered      decimal.Decimal
	Change        decimal.Decimal
}

func validPaymentMethod(m string) bool {
	switch m {
	case model.PaymentCash, model.PaymentCard, model.PaymentEWallet, model.PaymentTransfer:
		return true
	}
	return false
}

// Order validates payment against the cart and returns the draft to commit.
// The cart itself is left untouched.
func (c *CartSession) Order(p Payment) (*OrderDraft, error) {
	if len(c.lines) == 0 {
		return nil, validationError("lines", "cart is empty")
	}
	if strings.TrimSpace(p.CashierID) == "" {
		return nil, validationError("cashier_id", "is required")
	}
	if !validPaymentMethod(p.Method) {
		return nil, validationError("payment_method", "unknown payment method %q", p.Method)
	}
	totals, err := c.Totals(p.Discount)
	if err != nil {
		return nil, err
	}

	tendered := totals.Total
	if p.Method == model.PaymentCash {
		if p.Tendered == nil {
			return nil, validationError("amount_tendered", "is required for cash payments")
		}
		if p.Tendered.LessThan(totals.Total) {
			return nil, validationError("amount_tendered", "%s is less than total %s",
				p.Tendered.StringFixed(2), totals.Total.StringFixed(2))
		}
		tendered = *p.Tendered
	}

	orderType := strings.TrimSpace(p.OrderType)
	if orderType == "" {
		orderType = "regular"
	}
	return &OrderDraft{
		CashierID:     p.CashierID,
		OrderType:     orderType,
		PaymentMethod: p.Method,
		Lines:         c.Lines(),
		Totals:        totals,
		Tendered:      tendered,
		Change:        tendered.Sub(totals.Total),
	}, nil
}

// ── internals ─────────────────────────────────────────────────────────────────

func (c *CartSession) indexOf(id int) (int, error) {
	for i, l := range c.lines {
		if l.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("cart line %d: %w", id, ErrNotFound)
}

// usage lists what the cart consumes besides the line at skip, plus all but
// one unit of cand, so the checker tests the last unit of cand.
func (c *CartSession) usage(skip int, cand PlanLine) []PlanLine {
	out := make([]PlanLine, 0, len(c.lines)+1)
	for i, l := range c.lines {
		if i != skip {
			out = append(out, l.planLine())
		}
	}
	if cand.Quantity > 1 {
		rest := cand
		rest.Quantity = cand.Quantity - 1
		out = append(out, rest)
	}
	return out
}

// build resolves item and runs the availability check. skip is the index of
// the line being replaced, or -1.
func (c *CartSession) build(ctx context.Context, item CartItem, skip int) (CartLine, error) {
	line, err := c.resolve(ctx, item)
	if err != nil {
		return CartLine{}, err
	}
	cand := line.planLine()
	if err := c.checker.Check(ctx, cand, c.usage(skip, cand)); err != nil {
		return CartLine{}, err
	}
	return line, nil
}

// Quote prices item against the current catalog without adding it and
// without the availability check.
func (c *CartSession) Quote(ctx context.Context, item CartItem) (CartLine, error) {
	return c.resolve(ctx, item)
}

func (c *CartSession) resolve(ctx context.Context, item CartItem) (CartLine, error) {
	if item.Quantity < 1 {
		return CartLine{}, validationError("quantity", "must be at least 1, got %d", item.Quantity)
	}
	product, err := c.catalog.GetProduct(ctx, item.ProductID)
	if err != nil {
		return CartLine{}, lookupError("product", item.ProductID, err)
	}

	var variant *model.PriceVariant
	if item.VariantID != nil {
		variant, err = c.catalog.GetPriceVariant(ctx, *item.VariantID)
		if err != nil {
			return CartLine{}, lookupError("price variant", *item.VariantID, err)
		}
	}

	mods := make([]model.SelectedModifier, 0, len(item.Modifiers))
	for _, choice := range item.Modifiers {
		if choice.Quantity < 1 {
			return CartLine{}, validationError("modifiers", "quantity must be at least 1, got %d", choice.Quantity)
		}
		m, err := c.catalog.GetModifier(ctx, choice.ModifierID)
		if err != nil {
			return CartLine{}, lookupError("modifier", choice.ModifierID, err)
		}
		if !m.Active {
			return CartLine{}, validationError("modifiers", "modifier %q is inactive", m.Name)
		}
		mods = append(mods, snapshotModifier(m, choice.Quantity))
	}

	price, err := PriceLine(product, item.Quantity, variant, mods)
	if err != nil {
		return CartLine{}, err
	}
	return CartLine{
		Product:   *product,
		Variant:   variant,
		Quantity:  item.Quantity,
		Modifiers: mods,
		Price:     price,
	}, nil
}

func snapshotModifier(m *model.Modifier, quantity int) model.SelectedModifier {
	id := m.ID
	return model.SelectedModifier{
		ModifierID:      &id,
		Name:            m.Name,
		Price:           m.Price,
		Quantity:        quantity,
		LinkedProductID: m.LinkedProductID,
		DeductQuantity:  m.DeductQuantity,
		LinkKnown:       true,
	}
}
