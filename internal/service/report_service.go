package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"counterpos/internal/dto"
	"counterpos/internal/model"
	"counterpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ReportRange bounds a report. From is inclusive, To exclusive; nil means open.
type ReportRange struct {
	From *time.Time
	To   *time.Time
}

type ReportSummary struct {
	Orders        int             `json:"orders"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

type ProductSales struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type ModifierSales struct {
	Name    string          `json:"name"`
	Units   int             `json:"units"`
	Revenue decimal.Decimal `json:"revenue"`
}

// IngredientUsage is replayed consumption: product-ingredient edges and
// modifier links, never stored directly.
type IngredientUsage struct {
	ProductID    uuid.UUID `json:"product_id"`
	Name         string    `json:"name"`
	Quantity     int       `json:"quantity"`
	FromRecipe   int       `json:"from_recipe"`
	FromModifier int       `json:"from_modifier"`
}

type Breakdown struct {
	Key    string          `json:"key"`
	Orders int             `json:"orders"`
	Total  decimal.Decimal `json:"total"`
}

type HourlySales struct {
	Hour   int             `json:"hour"`
	Orders int             `json:"orders"`
	Total  decimal.Decimal `json:"total"`
}

// SalesReport is the usage reconstruction over a range.
type SalesReport struct {
	Summary        ReportSummary       `json:"summary"`
	Products       []ProductSales      `json:"products"`
	Modifiers      []ModifierSales     `json:"modifiers"`
	Ingredients    []IngredientUsage   `json:"ingredients"`
	OrderTypes     []Breakdown         `json:"order_types"`
	PaymentMethods []Breakdown         `json:"payment_methods"`
	Hourly         []HourlySales       `json:"hourly"`
	Warnings       []DataFormatWarning `json:"warnings"`
}

// InventoryReport is the current stock picture.
type InventoryReport struct {
	Threshold  int                   `json:"threshold"`
	LowStock   []dto.ProductResponse `json:"low_stock"`
	OutOfStock []dto.ProductResponse `json:"out_of_stock"`
	Valuation  Valuation             `json:"valuation"`
}

type ReportService interface {
	Sales(ctx context.Context, r ReportRange) (*SalesReport, error)
	Inventory(ctx context.Context, threshold int) (*InventoryReport, error)
}

type reportService struct {
	orders    repository.OrderRepository
	catalog   repository.CatalogRepository
	inventory InventoryService
	threshold int
}

func NewReportService(
	orders repository.OrderRepository,
	catalog repository.CatalogRepository,
	inventory InventoryService,
	threshold int,
) ReportService {
	return &reportService{orders: orders, catalog: catalog, inventory: inventory, threshold: threshold}
}

// Sales walks the orders in r and rebuilds the aggregates. Ingredient usage
// replays the deduction rules against the current bill of materials and
// modifier catalog. Malformed modifier data becomes a warning; the line still
// counts toward product sales.
func (s *reportService) Sales(ctx context.Context, r ReportRange) (*SalesReport, error) {
	orders, err := s.orders.FindInRange(ctx, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	edges, err := s.catalog.ListIngredientEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ingredient edges: %w", err)
	}
	mods, err := s.catalog.GetModifiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load modifiers: %w", err)
	}
	products, err := s.catalog.ListProducts(ctx, repository.ProductFilter{IncludeInactive: true})
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	names := make(map[uuid.UUID]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	agg := newSalesAggregator(NewBOM(edges), model.NewModifierIndex(mods), names)
	for i := range orders {
		agg.add(&orders[i])
	}
	report := agg.report()

	for _, w := range report.Warnings {
		log.Warn().
			Str("order_id", w.OrderID.String()).
			Str("line_id", w.LineID.String()).
			Str("reason", w.Reason).
			Msg("modifier data skipped in report")
	}
	return report, nil
}

func (s *reportService) Inventory(ctx context.Context, threshold int) (*InventoryReport, error) {
	if threshold <= 0 {
		threshold = s.threshold
	}
	low, err := s.inventory.LowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	out, err := s.inventory.OutOfStock(ctx)
	if err != nil {
		return nil, err
	}
	val, err := s.inventory.Valuation(ctx)
	if err != nil {
		return nil, err
	}
	return &InventoryReport{
		Threshold:  threshold,
		LowStock:   productsToResponse(low),
		OutOfStock: productsToResponse(out),
		Valuation:  val,
	}, nil
}

func productsToResponse(products []model.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	return out
}

// ── aggregation ───────────────────────────────────────────────────────────────

type salesAggregator struct {
	bom   BOM
	mods  model.ModifierIndex
	names map[uuid.UUID]string

	summary     ReportSummary
	products    map[uuid.UUID]*ProductSales
	modifiers   map[string]*ModifierSales
	ingredients map[uuid.UUID]*IngredientUsage
	orderTypes  map[string]*Breakdown
	payments    map[string]*Breakdown
	hourly      [24]HourlySales
	warnings    []DataFormatWarning
}

func newSalesAggregator(bom BOM, mods model.ModifierIndex, names map[uuid.UUID]string) *salesAggregator {
	a := &salesAggregator{
		bom:         bom,
		mods:        mods,
		names:       names,
		products:    map[uuid.UUID]*ProductSales{},
		modifiers:   map[string]*ModifierSales{},
		ingredients: map[uuid.UUID]*IngredientUsage{},
		orderTypes:  map[string]*Breakdown{},
		payments:    map[string]*Breakdown{},
		summary: ReportSummary{
			Subtotal: decimal.Zero,
			Discount: decimal.Zero,
			Tax:      decimal.Zero,
			Total:    decimal.Zero,
		},
	}
	for h := range a.hourly {
		a.hourly[h] = HourlySales{Hour: h, Total: decimal.Zero}
	}
	return a
}

func (a *salesAggregator) add(o *model.Order) {
	a.summary.Orders++
	a.summary.Subtotal = a.summary.Subtotal.Add(o.Subtotal)
	a.summary.Discount = a.summary.Discount.Add(o.DiscountAmount)
	a.summary.Tax = a.summary.Tax.Add(o.TaxAmount)
	a.summary.Total = a.summary.Total.Add(o.TotalAmount)

	bump(a.orderTypes, o.OrderType, o.TotalAmount)
	bump(a.payments, o.PaymentMethod, o.TotalAmount)
	h := o.CreatedAt.Hour()
	a.hourly[h].Orders++
	a.hourly[h].Total = a.hourly[h].Total.Add(o.TotalAmount)

	lines := make([]PlanLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		ps, ok := a.products[l.ProductID]
		if !ok {
			ps = &ProductSales{ProductID: l.ProductID, Name: l.ProductName, Revenue: decimal.Zero}
			a.products[l.ProductID] = ps
		}
		ps.Units += l.Quantity
		ps.Revenue = ps.Revenue.Add(l.Subtotal)

		mods := a.lineModifiers(o, &l)
		for _, m := range mods {
			key := strings.ToLower(m.Name)
			ms, ok := a.modifiers[key]
			if !ok {
				ms = &ModifierSales{Name: m.Name, Revenue: decimal.Zero}
				a.modifiers[key] = ms
			}
			ms.Units += m.Quantity
			ms.Revenue = ms.Revenue.Add(m.Price.Mul(decimal.NewFromInt(int64(m.Quantity))))
		}
		lines = append(lines, PlanLine{ProductID: l.ProductID, VariantID: l.VariantID, Quantity: l.Quantity, Modifiers: mods})
	}

	for _, c := range Contributions(lines, a.bom, a.mods) {
		if c.Role != RoleIngredient && c.Role != RoleModifier {
			continue
		}
		id := c.Target.ProductID
		iu, ok := a.ingredients[id]
		if !ok {
			iu = &IngredientUsage{ProductID: id, Name: a.names[id]}
			if iu.Name == "" {
				iu.Name = id.String()
			}
			a.ingredients[id] = iu
		}
		iu.Quantity -= c.Delta
		if c.Role == RoleIngredient {
			iu.FromRecipe -= c.Delta
		} else {
			iu.FromModifier -= c.Delta
		}
	}
}

// lineModifiers decodes and normalizes a line's modifiers, recording a
// warning instead of failing when the column cannot be parsed.
func (a *salesAggregator) lineModifiers(o *model.Order, l *model.OrderLine) []model.SelectedModifier {
	enc, err := model.DecodeModifiers(l.Modifiers)
	if err != nil {
		a.warnings = append(a.warnings, DataFormatWarning{
			OrderID: o.ID,
			LineID:  l.ID,
			Raw:     string(l.Modifiers),
			Reason:  err.Error(),
		})
		return nil
	}
	return enc.Normalize(a.mods)
}

func bump(m map[string]*Breakdown, key string, total decimal.Decimal) {
	if key == "" {
		key = "unknown"
	}
	b, ok := m[key]
	if !ok {
		b = &Breakdown{Key: key, Total: decimal.Zero}
		m[key] = b
	}
	b.Orders++
	b.Total = b.Total.Add(total)
}

func (a *salesAggregator) report() *SalesReport {
	r := &SalesReport{Summary: a.summary, Warnings: a.warnings}
	if a.summary.Orders > 0 {
		r.Summary.AverageTicket = a.summary.Total.DivRound(decimal.NewFromInt(int64(a.summary.Orders)), 2)
	} else {
		r.Summary.AverageTicket = decimal.Zero
	}

	for _, p := range a.products {
		r.Products = append(r.Products, *p)
	}
	sort.Slice(r.Products, func(i, j int) bool {
		if r.Products[i].Units != r.Products[j].Units {
			return r.Products[i].Units > r.Products[j].Units
		}
		return r.Products[i].Name < r.Products[j].Name
	})

	for _, m := range a.modifiers {
		r.Modifiers = append(r.Modifiers, *m)
	}
	sort.Slice(r.Modifiers, func(i, j int) bool {
		if r.Modifiers[i].Units != r.Modifiers[j].Units {
			return r.Modifiers[i].Units > r.Modifiers[j].Units
		}
		return r.Modifiers[i].Name < r.Modifiers[j].Name
	})

	for _, u := range a.ingredients {
		r.Ingredients = append(r.Ingredients, *u)
	}
	sort.Slice(r.Ingredients, func(i, j int) bool {
		if r.Ingredients[i].Quantity != r.Ingredients[j].Quantity {
			return r.Ingredients[i].Quantity > r.Ingredients[j].Quantity
		}
		return r.Ingredients[i].Name < r.Ingredients[j].Name
	})

	r.OrderTypes = sortedBreakdown(a.orderTypes)
	r.PaymentMethods = sortedBreakdown(a.payments)
	r.Hourly = a.hourly[:]
	return r
}

func sortedBreakdown(m map[string]*Breakdown) []Breakdown {
	out := make([]Breakdown, 0, len(m))
	for _, b := range m {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
