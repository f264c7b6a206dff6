package service

import (
	"context"
	"errors"
	"fmt"

	"counterpos/internal/model"
	"counterpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilityChecker runs the advisory sellability pre-check at cart-build
// time. It holds no reservation; Order Commit still floors at zero.
type AvailabilityChecker struct {
	catalog repository.CatalogRepository
}

func NewAvailabilityChecker(catalog repository.CatalogRepository) *AvailabilityChecker {
	return &AvailabilityChecker{catalog: catalog}
}

// Check verifies that one more unit of candidate can be sold on top of what
// the lines in cart already consume:
//   - the product is active and, if MadeToOrder, flagged available; if
//     StockTracked, its stock minus cart usage covers one more unit
//   - every ingredient and modifier-linked product it consumes has stock at
//     least equal to cart usage plus the one-unit requirement
//
// Variant stock is not pre-checked. Only direct ingredient edges are checked;
// nested BOM levels are left out, as they are when deducting.
func (a *AvailabilityChecker) Check(ctx context.Context, candidate PlanLine, cart []PlanLine) error {
	main, err := a.product(ctx, candidate.ProductID)
	if err != nil {
		return err
	}
	if !main.Active || (!main.IsStockTracked() && !main.Available) {
		return &AvailabilityError{Reason: ReasonUnavailable, ProductID: main.ID, Name: main.Name}
	}

	edges, err := a.catalog.ListIngredientEdges(ctx)
	if err != nil {
		return fmt.Errorf("load ingredient edges: %w", err)
	}
	bom := NewBOM(edges)
	// Cart lines carry fully resolved modifier snapshots, so no index is needed.
	noIndex := model.NewModifierIndex(nil)

	used := PlanDeductions(cart, bom, noIndex).Usage()
	one := candidate
	one.Quantity = 1
	need := PlanDeductions([]PlanLine{one}, bom, noIndex)

	cache := map[uuid.UUID]*model.Product{main.ID: main}
	for _, d := range need {
		if d.Target.IsVariant() {
			continue
		}
		required := -d.Delta
		p, ok := cache[d.Target.ProductID]
		if !ok {
			if p, err = a.product(ctx, d.Target.ProductID); err != nil {
				return err
			}
			cache[p.ID] = p
		}
		left := p.StockQuantity - used[d.Target]

		if p.ID == main.ID {
			if main.IsStockTracked() && left < required {
				return &AvailabilityError{
					Reason:    ReasonOutOfStock,
					ProductID: main.ID,
					Name:      main.Name,
					Available: max(left, 0),
					Required:  required,
				}
			}
			continue
		}

		short := !p.Active
		if p.IsStockTracked() {
			short = short || left < required
		} else {
			short = short || !p.Available
		}
		if short {
			return &AvailabilityError{
				Reason:    ReasonIngredientShortage,
				ProductID: p.ID,
				Name:      p.Name,
				Available: max(left, 0),
				Required:  required,
			}
		}
	}
	return nil
}

func (a *AvailabilityChecker) product(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := a.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, lookupError("product", id, err)
	}
	return p, nil
}

// lookupError maps gorm's not-found into ErrNotFound and wraps the rest.
func lookupError(what string, id uuid.UUID, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %s: %w", what, id, err)
}
