package service

import (
	"context"
	"testing"

	"counterpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCart(repo *stubCatalogRepo) *CartSession {
	return NewCartSession(repo, decimal.Zero)
}

func burgerItem(shop *burgerShop, qty, cheese int) CartItem {
	item := CartItem{ProductID: shop.Burger.ID, Quantity: qty}
	if cheese > 0 {
		item.Modifiers = []ModifierChoice{{ModifierID: shop.ExtraCheese.ID, Quantity: cheese}}
	}
	return item
}

func TestCart_AddPricesLine(t *testing.T) {
	shop := newBurgerShop()
	cart := newTestCart(shop.stub())

	line, err := cart.Add(context.Background(), burgerItem(shop, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, line.ID)
	assert.True(t, line.Price.Subtotal.Equal(money("170")))
	require.Len(t, line.Modifiers, 1)
	assert.Equal(t, "Extra Cheese", line.Modifiers[0].Name)
	assert.True(t, line.Modifiers[0].LinkKnown)

	tot, err := cart.Totals(decimal.Zero)
	require.NoError(t, err)
	assert.True(t, tot.Total.Equal(money("170")))
}

func TestCart_AddUnknownProduct(t *testing.T) {
	shop := newBurgerShop()
	cart := newTestCart(shop.stub())

	_, err := cart.Add(context.Background(), CartItem{ProductID: uuid.New(), Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, cart.Len())
}

func TestCart_AddInactiveModifier(t *testing.T) {
	shop := newBurgerShop()
	repo := shop.stub()
	m := repo.modifiers[shop.ExtraCheese.ID]
	m.Active = false
	repo.modifiers[m.ID] = m
	cart := newTestCart(repo)

	_, err := cart.Add(context.Background(), burgerItem(shop, 1, 1))
	assert.True(t, IsValidation(err))
}

func TestCart_UnavailableProducts(t *testing.T) {
	shop := newBurgerShop()
	repo := shop.stub()
	tea := model.Product{ID: uuid.New(), Name: "Iced Tea", UnitPrice: money("45"),
		TrackingMode: model.MadeToOrder, Available: false, Active: true}
	retired := model.Product{ID: uuid.New(), Name: "Retired", UnitPrice: money("1"),
		StockQuantity: 50, TrackingMode: model.StockTracked, Available: true, Active: false}
	repo.addProduct(tea)
	repo.addProduct(retired)
	cart := newTestCart(repo)

	for _, id := range []uuid.UUID{tea.ID, retired.ID} {
		_, err := cart.Add(context.Background(), CartItem{ProductID: id, Quantity: 1})
		require.Error(t, err)
		assert.Equal(t, ReasonUnavailable, AvailabilityReason(err))
	}
}

func TestCart_MadeToOrderIgnoresStock(t *testing.T) {
	shop := newBurgerShop()
	repo := shop.stub()
	tea := model.Product{ID: uuid.New(), Name: "Iced Tea", UnitPrice: money("45"),
		StockQuantity: 0, TrackingMode: model.MadeToOrder, Available: true, Active: true}
	repo.addProduct(tea)
	cart := newTestCart(repo)

	_, err := cart.Add(context.Background(), CartItem{ProductID: tea.ID, Quantity: 5})
	assert.NoError(t, err)
}

func TestCart_OutOfStockCountsCartUsage(t *testing.T) {
	shop := newBurgerShop()
	repo := shop.stub()
	soda := model.Product{ID: uuid.New(), Name: "Soda", UnitPrice: money("30"),
		StockQuantity: 3, TrackingMode: model.StockTracked, Available: true, Active: true}
	repo.addProduct(soda)
	cart := newTestCart(repo)
	ctx := context.Background()

	_, err := cart.Add(ctx, CartItem{ProductID: soda.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = cart.Add(ctx, CartItem{ProductID: soda.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = cart.Add(ctx, CartItem{ProductID: soda.ID, Quantity: 1})
	require.Error(t, err)
	var ae *AvailabilityError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ReasonOutOfStock, ae.Reason)
	assert.Equal(t, soda.ID, ae.ProductID)
	assert.Equal(t, 0, ae.Available)
	assert.Equal(t, 2, cart.Len())
}

func TestCart_IngredientShortageFromModifier(t *testing.T) {
	shop := newBurgerShop()
	shop.Cheese.StockQuantity = 3
	cart := newTestCart(shop.stub())
	ctx := context.Background()

	_, err := cart.Add(ctx, burgerItem(shop, 1, 1))
	require.NoError(t, err)

	// 2 slices used, 1 left, a second extra cheese needs 2
	_, err = cart.Add(ctx, burgerItem(shop, 1, 1))
	require.Error(t, err)
	var ae *AvailabilityError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ReasonIngredientShortage, ae.Reason)
	assert.Equal(t, shop.Cheese.ID, ae.ProductID)
	assert.Equal(t, 1, ae.Available)
	assert.Equal(t, 2, ae.Required)
}

func TestCart_IngredientShortageFromRecipe(t *testing.T) {
	shop := newBurgerShop()
	shop.Bun.StockQuantity = 2
	cart := newTestCart(shop.stub())

	_, err := cart.Add(context.Background(), burgerItem(shop, 3, 0))
	require.Error(t, err)
	assert.Equal(t, ReasonIngredientShortage, AvailabilityReason(err))
}

func TestCart_NestedIngredientNotChecked(t *testing.T) {
	shop := newBurgerShop()
	flour := model.Product{ID: uuid.New(), Name: "Flour", Category: "Ingredients", UnitPrice: money("1"),
		Cost: money("1"), StockQuantity: 0, TrackingMode: model.StockTracked, Available: true, Active: true}
	repo := shop.stub()
	repo.addProduct(flour)
	repo.edges = append(repo.edges, model.ProductIngredient{ID: uuid.New(), ProductID: shop.Bun.ID, IngredientID: flour.ID, QuantityPerUnit: 1})
	cart := newTestCart(repo)

	// Burger -> Bun -> Flour: only the Bun edge gates the sale
	_, err := cart.Add(context.Background(), burgerItem(shop, 1, 0))
	assert.NoError(t, err)
}

func TestCart_MadeToOrderIngredientUsesFlag(t *testing.T) {
	shop := newBurgerShop()
	shop.Bun.TrackingMode = model.MadeToOrder
	shop.Bun.StockQuantity = 0
	shop.Bun.Available = false
	cart := newTestCart(shop.stub())

	_, err := cart.Add(context.Background(), burgerItem(shop, 1, 0))
	assert.Equal(t, ReasonIngredientShortage, AvailabilityReason(err))
}

func TestCart_ReplaceKeepsPositionAndIgnoresOwnUsage(t *testing.T) {
	shop := newBurgerShop()
	shop.Bun.StockQuantity = 3
	cart := newTestCart(shop.stub())
	ctx := context.Background()

	first, err := cart.Add(ctx, burgerItem(shop, 3, 0))
	require.NoError(t, err)
	_, err = cart.Add(ctx, CartItem{ProductID: shop.Cheese.ID, Quantity: 1})
	require.NoError(t, err)

	// the replaced line's own 3 buns are released before the check
	line, err := cart.Replace(ctx, first.ID, burgerItem(shop, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, first.ID, line.ID)
	lines := cart.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, first.ID, lines[0].ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, lines[0].Price.Subtotal.Equal(money("320")))
}

func TestCart_SetQuantity(t *testing.T) {
	shop := newBurgerShop()
	shop.Bun.StockQuantity = 2
	repo := shop.stub()
	cart := newTestCart(repo)
	ctx := context.Background()

	line, err := cart.Add(ctx, burgerItem(shop, 1, 1))
	require.NoError(t, err)

	line, err = cart.SetQuantity(ctx, line.ID, 2)
	require.NoError(t, err)
	assert.True(t, line.Price.Subtotal.Equal(money("320")), "got %s", line.Price.Subtotal)

	_, err = cart.SetQuantity(ctx, line.ID, 3)
	assert.Equal(t, ReasonIngredientShortage, AvailabilityReason(err))
	assert.Equal(t, 2, cart.Lines()[0].Quantity)

	// decreases skip the availability check
	bun := repo.products[shop.Bun.ID]
	bun.StockQuantity = 0
	repo.addProduct(bun)
	line, err = cart.SetQuantity(ctx, line.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)

	_, err = cart.SetQuantity(ctx, line.ID, 0)
	assert.True(t, IsValidation(err))
	_, err = cart.SetQuantity(ctx, 99, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCart_RemoveAndClear(t *testing.T) {
	shop := newBurgerShop()
	cart := newTestCart(shop.stub())
	ctx := context.Background()

	a, err := cart.Add(ctx, burgerItem(shop, 1, 0))
	require.NoError(t, err)
	b, err := cart.Add(ctx, burgerItem(shop, 1, 0))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, cart.Remove(a.ID))
	assert.ErrorIs(t, cart.Remove(a.ID), ErrNotFound)
	require.Len(t, cart.Lines(), 1)
	assert.Equal(t, b.ID, cart.Lines()[0].ID)

	cart.Clear()
	assert.Equal(t, 0, cart.Len())
}

func TestCart_QuoteSkipsAvailability(t *testing.T) {
	shop := newBurgerShop()
	shop.Bun.StockQuantity = 0
	cart := newTestCart(shop.stub())

	line, err := cart.Quote(context.Background(), burgerItem(shop, 2, 1))
	require.NoError(t, err)
	assert.True(t, line.Price.Subtotal.Equal(money("320")))
	assert.Equal(t, 0, cart.Len())
}

func TestCart_Order(t *testing.T) {
	shop := newBurgerShop()
	ctx := context.Background()
	tendered := func(s string) *decimal.Decimal { d := money(s); return &d }

	t.Run("empty cart", func(t *testing.T) {
		cart := newTestCart(shop.stub())
		_, err := cart.Order(Payment{CashierID: "c1", Method: model.PaymentCard})
		assert.True(t, IsValidation(err))
	})

	cart := newTestCart(shop.stub())
	_, err := cart.Add(ctx, burgerItem(shop, 1, 1))
	require.NoError(t, err)

	cases := []struct {
		name    string
		payment Payment
		field   string
	}{
		{"missing cashier", Payment{Method: model.PaymentCard}, "cashier_id"},
		{"unknown method", Payment{CashierID: "c1", Method: "barter"}, "payment_method"},
		{"cash without tender", Payment{CashierID: "c1", Method: model.PaymentCash}, "amount_tendered"},
		{"cash short", Payment{CashierID: "c1", Method: model.PaymentCash, Tendered: tendered("169.99")}, "amount_tendered"},
		{"discount too large", Payment{CashierID: "c1", Method: model.PaymentCard, Discount: money("171")}, "discount_amount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := cart.Order(tc.payment)
			var v *ValidationError
			require.ErrorAs(t, err, &v)
			assert.Equal(t, tc.field, v.Field)
		})
	}

	t.Run("cash with change", func(t *testing.T) {
		draft, err := cart.Order(Payment{CashierID: "c1", Method: model.PaymentCash, Tendered: tendered("200")})
		require.NoError(t, err)
		assert.True(t, draft.Totals.Total.Equal(money("170")))
		assert.True(t, draft.Change.Equal(money("30")))
		assert.Equal(t, "regular", draft.OrderType)
	})

	t.Run("card charges exact total", func(t *testing.T) {
		draft, err := cart.Order(Payment{CashierID: "c1", Method: model.PaymentCard, OrderType: "take_out", Discount: money("10")})
		require.NoError(t, err)
		assert.True(t, draft.Tendered.Equal(money("160")))
		assert.True(t, draft.Change.IsZero())
		assert.Equal(t, "take_out", draft.OrderType)
	})

	assert.Equal(t, 1, cart.Len())
}
