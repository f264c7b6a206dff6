package service

import (
	"context"
	"testing"
	"time"

	"counterpos/internal/model"
	"counterpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newReportService(h *commitHarness) ReportService {
	stock := repository.NewStockRepository(h.db)
	inv := NewInventoryService(h.catalog, stock, NewStockLedger(stock), 5)
	return NewReportService(repository.NewOrderRepository(h.db), h.catalog, inv, 5)
}

// insertLegacyOrder stores an order whose only line carries raw modifier text.
func insertLegacyOrder(t *testing.T, h *commitHarness, number int, rawModifiers string) model.Order {
	t.Helper()
	o := model.Order{
		Number:         number,
		CashierID:      "legacy",
		Subtotal:       money("150"),
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		TotalAmount:    money("150"),
		PaymentMethod:  model.PaymentCash,
		AmountTendered: money("150"),
		ChangeAmount:   decimal.Zero,
		OrderType:      "take_out",
		Lines: []model.OrderLine{{
			Position:      0,
			ProductID:     h.shop.Burger.ID,
			ProductName:   "Burger",
			Quantity:      1,
			BaseUnitPrice: money("150"),
			UnitPrice:     money("150"),
			Subtotal:      money("150"),
			Modifiers:     datatypes.JSON(rawModifiers),
		}},
	}
	require.NoError(t, h.db.Create(&o).Error)
	return o
}

func findProduct(r *SalesReport, id uuid.UUID) *ProductSales {
	for i := range r.Products {
		if r.Products[i].ProductID == id {
			return &r.Products[i]
		}
	}
	return nil
}

func findModifier(r *SalesReport, name string) *ModifierSales {
	for i := range r.Modifiers {
		if r.Modifiers[i].Name == name {
			return &r.Modifiers[i]
		}
	}
	return nil
}

func findIngredient(r *SalesReport, id uuid.UUID) *IngredientUsage {
	for i := range r.Ingredients {
		if r.Ingredients[i].ProductID == id {
			return &r.Ingredients[i]
		}
	}
	return nil
}

func TestSalesReport_ReplaysCommittedUsage(t *testing.T) {
	h := newCommitHarness(t, nil)
	ctx := context.Background()

	cart := h.cart()
	_, err := cart.Add(ctx, burgerItem(h.shop, 2, 1))
	require.NoError(t, err)
	_, err = cart.Add(ctx, CartItem{ProductID: h.shop.Bun.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = h.orders.Checkout(ctx, cart, cardPayment())
	require.NoError(t, err)

	cash := money("200")
	cart = h.cart()
	_, err = cart.Add(ctx, burgerItem(h.shop, 1, 0))
	require.NoError(t, err)
	_, err = h.orders.Checkout(ctx, cart, Payment{CashierID: "c2", Method: model.PaymentCash, Tendered: &cash})
	require.NoError(t, err)

	report, err := newReportService(h).Sales(ctx, ReportRange{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Summary.Orders)
	// (300 + 20 + 10) + 150
	assert.True(t, report.Summary.Total.Equal(money("480")), "got %s", report.Summary.Total)
	assert.True(t, report.Summary.AverageTicket.Equal(money("240")))

	burger := findProduct(report, h.shop.Burger.ID)
	require.NotNil(t, burger)
	assert.Equal(t, 3, burger.Units)
	assert.True(t, burger.Revenue.Equal(money("470")))
	assert.Equal(t, h.shop.Burger.ID, report.Products[0].ProductID)

	cheese := findModifier(report, "Extra Cheese")
	require.NotNil(t, cheese)
	assert.Equal(t, 1, cheese.Units)
	assert.True(t, cheese.Revenue.Equal(money("20")))

	// the bun sold on its own is a product sale, not ingredient usage
	bun := findIngredient(report, h.shop.Bun.ID)
	require.NotNil(t, bun)
	assert.Equal(t, 3, bun.Quantity)
	assert.Equal(t, 3, bun.FromRecipe)
	slices := findIngredient(report, h.shop.Cheese.ID)
	require.NotNil(t, slices)
	assert.Equal(t, 4, slices.Quantity)
	assert.Equal(t, 4, slices.FromModifier)
	assert.Equal(t, "Cheese Slice", slices.Name)

	require.Len(t, report.PaymentMethods, 2)
	assert.Equal(t, model.PaymentCard, report.PaymentMethods[0].Key)
	assert.Equal(t, model.PaymentCash, report.PaymentMethods[1].Key)
	require.Len(t, report.OrderTypes, 2)
	assert.Equal(t, "dine_in", report.OrderTypes[0].Key)
	assert.Equal(t, "regular", report.OrderTypes[1].Key)
	assert.True(t, report.OrderTypes[1].Total.Equal(money("150")))

	hourly := 0
	for _, hs := range report.Hourly {
		hourly += hs.Orders
	}
	assert.Len(t, report.Hourly, 24)
	assert.Equal(t, 2, hourly)
	assert.Empty(t, report.Warnings)
}

func TestSalesReport_LegacyFlatModifiers(t *testing.T) {
	h := newCommitHarness(t, nil)
	insertLegacyOrder(t, h, 1, "Extra Cheese, Ketchup Packet")

	report, err := newReportService(h).Sales(context.Background(), ReportRange{})
	require.NoError(t, err)
	require.Empty(t, report.Warnings)

	cheese := findModifier(report, "Extra Cheese")
	require.NotNil(t, cheese)
	assert.Equal(t, 1, cheese.Units)
	assert.True(t, cheese.Revenue.Equal(money("20")))

	unknown := findModifier(report, "Ketchup Packet")
	require.NotNil(t, unknown)
	assert.Equal(t, 1, unknown.Units)
	assert.True(t, unknown.Revenue.IsZero())

	slices := findIngredient(report, h.shop.Cheese.ID)
	require.NotNil(t, slices)
	assert.Equal(t, 2, slices.FromModifier)
}

func TestSalesReport_LegacyNameArray(t *testing.T) {
	h := newCommitHarness(t, nil)
	insertLegacyOrder(t, h, 1, `["Extra Cheese"]`)

	report, err := newReportService(h).Sales(context.Background(), ReportRange{})
	require.NoError(t, err)
	cheese := findModifier(report, "Extra Cheese")
	require.NotNil(t, cheese)
	assert.Equal(t, 1, cheese.Units)
}

func TestSalesReport_MalformedModifiersBecomeWarnings(t *testing.T) {
	h := newCommitHarness(t, nil)
	o := insertLegacyOrder(t, h, 1, `[{"name": "Extra Cheese", `)

	report, err := newReportService(h).Sales(context.Background(), ReportRange{})
	require.NoError(t, err)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, o.ID, report.Warnings[0].OrderID)
	assert.Equal(t, o.Lines[0].ID, report.Warnings[0].LineID)
	burger := findProduct(report, h.shop.Burger.ID)
	require.NotNil(t, burger, "the line still counts as a product sale")
	assert.Equal(t, 1, burger.Units)
	assert.Empty(t, report.Modifiers)
}

func TestSalesReport_Range(t *testing.T) {
	h := newCommitHarness(t, nil)
	insertLegacyOrder(t, h, 1, "[]")

	future := time.Now().Add(time.Hour)
	report, err := newReportService(h).Sales(context.Background(), ReportRange{From: &future})
	require.NoError(t, err)
	assert.Zero(t, report.Summary.Orders)
	assert.True(t, report.Summary.AverageTicket.IsZero())
	assert.Empty(t, report.Products)
}

func TestInventoryReport(t *testing.T) {
	h := newCommitHarness(t, nil)
	ctx := context.Background()
	tea := model.Product{Name: "Iced Tea", Category: "Drinks", UnitPrice: money("45"), Cost: money("10"),
		StockQuantity: 2, TrackingMode: model.MadeToOrder, Available: true, Active: true}
	empty := model.Product{Name: "Pickles", Category: "Ingredients", UnitPrice: money("5"), Cost: money("1"),
		StockQuantity: 0, TrackingMode: model.StockTracked, Available: true, Active: true}
	require.NoError(t, h.db.Create(&tea).Error)
	require.NoError(t, h.db.Create(&empty).Error)

	report, err := newReportService(h).Inventory(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Threshold)
	// Bun 5 is in, Cheese 10 and Burger 20 are above, tea is not tracked
	require.Len(t, report.LowStock, 1)
	assert.Equal(t, "Bun", report.LowStock[0].Name)
	require.Len(t, report.OutOfStock, 1)
	assert.Equal(t, "Pickles", report.OutOfStock[0].Name)

	assert.Equal(t, 4, report.Valuation.Products)
	assert.Equal(t, 35, report.Valuation.Units)
	// 150×20 + 10×5 + 12×10
	assert.True(t, report.Valuation.Retail.Equal(money("3170")), "got %s", report.Valuation.Retail)
	// 60×20 + 4×5 + 5×10
	assert.True(t, report.Valuation.AtCost.Equal(money("1270")), "got %s", report.Valuation.AtCost)

	wide, err := newReportService(h).Inventory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, wide.LowStock, 2)
	assert.Equal(t, "Bun", wide.LowStock[0].Name)
	assert.Equal(t, "Cheese Slice", wide.LowStock[1].Name)
}
