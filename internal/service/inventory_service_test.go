package service

import (
	"context"
	"testing"

	"counterpos/internal/model"
	"counterpos/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInventoryHarness(t *testing.T) (*commitHarness, InventoryService) {
	t.Helper()
	h := newCommitHarness(t, nil)
	stock := repository.NewStockRepository(h.db)
	return h, NewInventoryService(h.catalog, stock, NewStockLedger(stock), 5)
}

func TestInventoryAdjust_Kinds(t *testing.T) {
	h, inv := newInventoryHarness(t)
	ctx := context.Background()
	bun := h.shop.Bun.ID

	adj, err := inv.Adjust(ctx, AdjustStockInput{ProductID: bun, Kind: model.AdjustAdd, Quantity: 7, Reason: "delivery", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 5, adj.StockBefore)
	assert.Equal(t, 12, adj.StockAfter)

	adj, err = inv.Adjust(ctx, AdjustStockInput{ProductID: bun, Kind: model.AdjustRemove, Quantity: 20, Reason: "spoiled"})
	require.NoError(t, err)
	assert.Equal(t, -20, adj.Delta)
	assert.Equal(t, 0, adj.StockAfter, "removal floors at zero")

	adj, err = inv.Adjust(ctx, AdjustStockInput{ProductID: bun, Kind: model.AdjustSet, Quantity: 9, Reason: "count"})
	require.NoError(t, err)
	assert.Equal(t, 9, adj.Delta)
	assert.Equal(t, 9, stockOf(t, h.db, bun))

	history, total, err := inv.History(ctx, repository.AdjustmentFilter{ProductID: &bun})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, history, 3)

	sets, _, err := inv.History(ctx, repository.AdjustmentFilter{Kind: model.AdjustSet})
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "count", sets[0].Reason)
}

func TestInventoryAdjust_Variant(t *testing.T) {
	h, inv := newInventoryHarness(t)
	variant := model.PriceVariant{ProductID: h.shop.Burger.ID, Name: "Double", Price: money("220"), StockQuantity: 4}
	require.NoError(t, h.db.Create(&variant).Error)

	adj, err := inv.Adjust(context.Background(), AdjustStockInput{
		ProductID: h.shop.Burger.ID, VariantID: &variant.ID, Kind: model.AdjustRemove, Quantity: 1, Reason: "dropped",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, adj.StockBefore)
	assert.Equal(t, 3, adj.StockAfter)
	assert.Equal(t, 20, stockOf(t, h.db, h.shop.Burger.ID), "parent stock is independent")

	_, err = inv.Adjust(context.Background(), AdjustStockInput{
		ProductID: h.shop.Bun.ID, VariantID: &variant.ID, Kind: model.AdjustAdd, Quantity: 1, Reason: "x",
	})
	assert.True(t, IsValidation(err))
}

func TestInventoryAdjust_Rejects(t *testing.T) {
	h, inv := newInventoryHarness(t)
	bun := h.shop.Bun.ID

	cases := []struct {
		name string
		in   AdjustStockInput
	}{
		{"missing reason", AdjustStockInput{ProductID: bun, Kind: model.AdjustAdd, Quantity: 1}},
		{"zero add", AdjustStockInput{ProductID: bun, Kind: model.AdjustAdd, Quantity: 0, Reason: "x"}},
		{"negative set", AdjustStockInput{ProductID: bun, Kind: model.AdjustSet, Quantity: -1, Reason: "x"}},
		{"order kind", AdjustStockInput{ProductID: bun, Kind: model.AdjustOrder, Quantity: 1, Reason: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := inv.Adjust(context.Background(), tc.in)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}

	_, err := inv.Adjust(context.Background(), AdjustStockInput{ProductID: uuid.New(), Kind: model.AdjustAdd, Quantity: 1, Reason: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValuate_SkipsMadeToOrder(t *testing.T) {
	v := valuate([]model.Product{
		{UnitPrice: money("10"), Cost: money("4"), StockQuantity: 3, TrackingMode: model.StockTracked},
		{UnitPrice: money("99"), Cost: money("50"), StockQuantity: 8, TrackingMode: model.MadeToOrder},
	})
	assert.Equal(t, 1, v.Products)
	assert.Equal(t, 3, v.Units)
	assert.True(t, v.Retail.Equal(money("30")))
	assert.True(t, v.AtCost.Equal(money("12")))
}
