package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"counterpos/internal/model"
	"counterpos/internal/repository"
	"counterpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type OrderService interface {
	// PlanDeductions builds the summed plan for lines against the current
	// bill of materials.
	PlanDeductions(ctx context.Context, lines []CartLine) (DeductionPlan, error)
	// CommitOrder persists the order and applies plan atomically.
	CommitOrder(ctx context.Context, draft *OrderDraft, plan DeductionPlan) (*model.Order, error)
	// Checkout validates payment, plans, commits and clears the cart.
	Checkout(ctx context.Context, cart *CartSession, payment Payment) (*model.Order, error)

	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error)
}

type orderService struct {
	orders            repository.OrderRepository
	catalog           repository.CatalogRepository
	ledger            *StockLedger
	dispatcher        *worker.Dispatcher
	lowStockThreshold int
}

func NewOrderService(
	orders repository.OrderRepository,
	catalog repository.CatalogRepository,
	ledger *StockLedger,
	dispatcher *worker.Dispatcher,
	lowStockThreshold int,
) OrderService {
	return &orderService{
		orders:            orders,
		catalog:           catalog,
		ledger:            ledger,
		dispatcher:        dispatcher,
		lowStockThreshold: lowStockThreshold,
	}
}

func (s *orderService) PlanDeductions(ctx context.Context, lines []CartLine) (DeductionPlan, error) {
	edges, err := s.catalog.ListIngredientEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ingredient edges: %w", err)
	}
	mods, err := s.catalog.GetModifiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load modifiers: %w", err)
	}
	planLines := make([]PlanLine, 0, len(lines))
	for _, l := range lines {
		planLines = append(planLines, l.planLine())
	}
	return PlanDeductions(planLines, NewBOM(edges), model.NewModifierIndex(mods)), nil
}

// ── CommitOrder ───────────────────────────────────────────────────────────────
// One transaction:
//   1. next order number
//   2. insert header, then each line with its modifier snapshot
//   3. apply every plan entry through the ledger, floored at zero
// Any failure rolls everything back and surfaces as *CommitError.

func (s *orderService) CommitOrder(ctx context.Context, draft *OrderDraft, plan DeductionPlan) (*model.Order, error) {
	if draft == nil || len(draft.Lines) == 0 {
		return nil, validationError("lines", "order has no lines")
	}

	var (
		order   model.Order
		applied []model.StockAdjustment
	)
	txErr := s.ledger.Transact(ctx, func(tx *gorm.DB) error {
		number, err := s.orders.NextNumberTx(ctx, tx)
		if err != nil {
			return fmt.Errorf("next order number: %w", err)
		}

		order = model.Order{
			Number:         number,
			CashierID:      draft.CashierID,
			Subtotal:       draft.Totals.Subtotal,
			DiscountAmount: draft.Totals.Discount,
			TaxAmount:      draft.Totals.Tax,
			TotalAmount:    draft.Totals.Total,
			PaymentMethod:  draft.PaymentMethod,
			AmountTendered: draft.Tendered,
			ChangeAmount:   draft.Change,
			OrderType:      draft.OrderType,
		}
		if err := s.orders.InsertOrderTx(ctx, tx, &order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		order.Lines = make([]model.OrderLine, 0, len(draft.Lines))
		for i, l := range draft.Lines {
			line, err := orderLine(order.ID, i, l)
			if err != nil {
				return err
			}
			if err := s.orders.InsertOrderLineTx(ctx, tx, &line); err != nil {
				return fmt.Errorf("insert order line %d: %w", i+1, err)
			}
			order.Lines = append(order.Lines, line)
		}

		orderID := order.ID
		applied = make([]model.StockAdjustment, 0, len(plan))
		for _, d := range plan {
			adj := model.StockAdjustment{
				ProductID: d.Target.ProductID,
				Kind:      model.AdjustOrder,
				Delta:     d.Delta,
				Reason:    fmt.Sprintf("order #%d (%s)", number, d.Role),
				UserID:    draft.CashierID,
				OrderID:   &orderID,
			}
			if d.Target.IsVariant() {
				vid := d.Target.VariantID
				adj.VariantID = &vid
			}
			if err := s.ledger.ApplyTx(ctx, tx, &adj); err != nil {
				return err
			}
			applied = append(applied, adj)
		}
		return nil
	})
	if txErr != nil {
		log.Error().Err(txErr).Str("cashier_id", draft.CashierID).Msg("order commit failed")
		return nil, &CommitError{Err: txErr}
	}

	log.Info().
		Str("order_id", order.ID.String()).
		Int("number", order.Number).
		Str("total", order.TotalAmount.StringFixed(2)).
		Int("deductions", len(applied)).
		Msg("order committed")

	s.dispatchAlerts(ctx, &order, applied)
	return &order, nil
}

func orderLine(orderID uuid.UUID, position int, l CartLine) (model.OrderLine, error) {
	mods, err := model.EncodeModifiers(l.Modifiers)
	if err != nil {
		return model.OrderLine{}, fmt.Errorf("encode modifiers of line %d: %w", position+1, err)
	}
	line := model.OrderLine{
		OrderID:       orderID,
		Position:      position,
		ProductID:     l.Product.ID,
		ProductName:   l.Product.Name,
		Quantity:      l.Quantity,
		BaseUnitPrice: l.Price.BaseUnitPrice,
		UnitPrice:     l.Price.UnitPrice,
		Subtotal:      l.Price.Subtotal,
		Modifiers:     mods,
	}
	if l.Variant != nil {
		vid, name := l.Variant.ID, l.Variant.Name
		line.VariantID = &vid
		line.VariantName = &name
	}
	return line, nil
}

// dispatchAlerts enqueues a stock_alert job for each StockTracked product the
// order left at or below the threshold. Best-effort: failures are logged only.
func (s *orderService) dispatchAlerts(ctx context.Context, order *model.Order, applied []model.StockAdjustment) {
	if s.dispatcher == nil {
		return
	}
	for _, adj := range applied {
		if adj.VariantID != nil || adj.StockAfter > s.lowStockThreshold {
			continue
		}
		p, err := s.catalog.GetProduct(ctx, adj.ProductID)
		if err != nil || !p.IsStockTracked() {
			continue
		}
		err = s.dispatcher.EnqueueStockAlert(ctx, worker.StockAlertPayload{
			ProductID:   p.ID.String(),
			Name:        p.Name,
			Stock:       adj.StockAfter,
			Threshold:   s.lowStockThreshold,
			OrderID:     order.ID.String(),
			OrderNumber: order.Number,
			At:          time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			log.Warn().Err(err).Str("product_id", p.ID.String()).Msg("stock alert not dispatched")
		}
	}
}

func (s *orderService) Checkout(ctx context.Context, cart *CartSession, payment Payment) (*model.Order, error) {
	draft, err := cart.Order(payment)
	if err != nil {
		return nil, err
	}
	plan, err := s.PlanDeductions(ctx, draft.Lines)
	if err != nil {
		return nil, &CommitError{Err: err}
	}
	order, err := s.CommitOrder(ctx, draft, plan)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return o, err
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orders.List(ctx, filter)
}
