package service

import (
	"context"
	"fmt"
	"strings"

	"counterpos/internal/model"
	"counterpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdjustStockInput is a manual stock change. Quantity is the amount to add or
// remove, or the new absolute value for AdjustSet.
type AdjustStockInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Kind      string
	Quantity  int
	Reason    string
	UserID    string
}

// Valuation is Σ price × stock and Σ cost × stock over StockTracked products.
type Valuation struct {
	Products int             `json:"products"`
	Units    int             `json:"units"`
	Retail   decimal.Decimal `json:"retail"`
	AtCost   decimal.Decimal `json:"at_cost"`
}

type InventoryService interface {
	Adjust(ctx context.Context, in AdjustStockInput) (*model.StockAdjustment, error)
	// LowStock returns StockTracked products with 0 < stock <= threshold,
	// ascending by stock. threshold <= 0 uses the configured default.
	LowStock(ctx context.Context, threshold int) ([]model.Product, error)
	OutOfStock(ctx context.Context) ([]model.Product, error)
	Valuation(ctx context.Context) (Valuation, error)
	History(ctx context.Context, filter repository.AdjustmentFilter) ([]model.StockAdjustment, int64, error)
}

type inventoryService struct {
	catalog          repository.CatalogRepository
	stock            repository.StockRepository
	ledger           *StockLedger
	defaultThreshold int
}

func NewInventoryService(
	catalog repository.CatalogRepository,
	stock repository.StockRepository,
	ledger *StockLedger,
	defaultThreshold int,
) InventoryService {
	return &inventoryService{catalog: catalog, stock: stock, ledger: ledger, defaultThreshold: defaultThreshold}
}

func (s *inventoryService) Adjust(ctx context.Context, in AdjustStockInput) (*model.StockAdjustment, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, validationError("reason", "is required")
	}
	switch in.Kind {
	case model.AdjustAdd, model.AdjustRemove:
		if in.Quantity < 1 {
			return nil, validationError("quantity", "must be at least 1, got %d", in.Quantity)
		}
	case model.AdjustSet:
		if in.Quantity < 0 {
			return nil, validationError("quantity", "stock cannot be set below zero")
		}
	default:
		return nil, validationError("kind", "unknown adjustment kind %q", in.Kind)
	}

	if _, err := s.catalog.GetProduct(ctx, in.ProductID); err != nil {
		return nil, lookupError("product", in.ProductID, err)
	}
	target := model.ProductTarget(in.ProductID)
	if in.VariantID != nil {
		v, err := s.catalog.GetPriceVariant(ctx, *in.VariantID)
		if err != nil {
			return nil, lookupError("price variant", *in.VariantID, err)
		}
		if v.ProductID != in.ProductID {
			return nil, validationError("variant_id", "variant does not belong to product")
		}
		target = model.VariantTarget(in.ProductID, v.ID)
	}

	adj := &model.StockAdjustment{
		ProductID: in.ProductID,
		VariantID: in.VariantID,
		Kind:      in.Kind,
		Reason:    in.Reason,
		UserID:    in.UserID,
	}
	err := s.ledger.Transact(ctx, func(tx *gorm.DB) error {
		switch in.Kind {
		case model.AdjustAdd:
			adj.Delta = in.Quantity
		case model.AdjustRemove:
			adj.Delta = -in.Quantity
		case model.AdjustSet:
			cur, err := s.ledger.CurrentTx(ctx, tx, target)
			if err != nil {
				return err
			}
			adj.Delta = in.Quantity - cur
		}
		return s.ledger.ApplyTx(ctx, tx, adj)
	})
	if err != nil {
		return nil, fmt.Errorf("stock adjustment: %w", err)
	}

	log.Info().
		Str("product_id", in.ProductID.String()).
		Str("kind", in.Kind).
		Int("before", adj.StockBefore).
		Int("after", adj.StockAfter).
		Msg("stock adjusted")
	return adj, nil
}

func (s *inventoryService) LowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	if threshold <= 0 {
		threshold = s.defaultThreshold
	}
	return s.catalog.ListLowStock(ctx, threshold)
}

func (s *inventoryService) OutOfStock(ctx context.Context) ([]model.Product, error) {
	return s.catalog.ListOutOfStock(ctx)
}

func (s *inventoryService) Valuation(ctx context.Context) (Valuation, error) {
	products, err := s.catalog.ListStockTracked(ctx)
	if err != nil {
		return Valuation{}, err
	}
	return valuate(products), nil
}

func valuate(products []model.Product) Valuation {
	v := Valuation{Retail: decimal.Zero, AtCost: decimal.Zero}
	for _, p := range products {
		if !p.IsStockTracked() {
			continue
		}
		v.Products++
		stock := decimal.NewFromInt(int64(p.StockQuantity))
		v.Units += p.StockQuantity
		v.Retail = v.Retail.Add(p.UnitPrice.Mul(stock))
		v.AtCost = v.AtCost.Add(p.Cost.Mul(stock))
	}
	return v
}

func (s *inventoryService) History(ctx context.Context, filter repository.AdjustmentFilter) ([]model.StockAdjustment, int64, error) {
	return s.stock.ListAdjustments(ctx, filter)
}
