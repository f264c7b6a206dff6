package service

import (
	"context"
	"fmt"
	"testing"

	"counterpos/internal/infra"
	"counterpos/internal/model"
	"counterpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ── In-memory sqlite ─────────────────────────────────────────────────────────

// newTestDB opens a private in-memory database with the full schema. One
// open connection keeps the database alive and serializes access.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.RunMigrations(db))
	return db
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Burger fixture ───────────────────────────────────────────────────────────

// burgerShop is the reference catalog: Burger 150 with a Bun ingredient
// (qpu 1) and an Extra Cheese modifier (20, consumes 2 Cheese Slices).
type burgerShop struct {
	Burger      model.Product
	Bun         model.Product
	Cheese      model.Product
	ExtraCheese model.Modifier
	Edge        model.ProductIngredient
}

func newBurgerShop() *burgerShop {
	s := &burgerShop{
		Burger: model.Product{ID: uuid.New(), Name: "Burger", Category: "Burgers", UnitPrice: money("150"),
			Cost: money("60"), StockQuantity: 20, TrackingMode: model.StockTracked, Available: true, Active: true},
		Bun: model.Product{ID: uuid.New(), Name: "Bun", Category: "Ingredients", UnitPrice: money("10"),
			Cost: money("4"), StockQuantity: 5, TrackingMode: model.StockTracked, Available: true, Active: true},
		Cheese: model.Product{ID: uuid.New(), Name: "Cheese Slice", Category: "Ingredients", UnitPrice: money("12"),
			Cost: money("5"), StockQuantity: 10, TrackingMode: model.StockTracked, Available: true, Active: true},
	}
	cheeseID := s.Cheese.ID
	s.ExtraCheese = model.Modifier{ID: uuid.New(), Name: "Extra Cheese", Price: money("20"),
		LinkedProductID: &cheeseID, DeductQuantity: 2, Active: true}
	s.Edge = model.ProductIngredient{ID: uuid.New(), ProductID: s.Burger.ID, IngredientID: s.Bun.ID, QuantityPerUnit: 1}
	return s
}

func (s *burgerShop) persist(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, p := range []*model.Product{&s.Burger, &s.Bun, &s.Cheese} {
		require.NoError(t, db.Create(p).Error)
	}
	require.NoError(t, db.Create(&s.ExtraCheese).Error)
	require.NoError(t, db.Create(&s.Edge).Error)
}

func (s *burgerShop) stub() *stubCatalogRepo {
	r := newStubCatalogRepo()
	r.addProduct(s.Burger)
	r.addProduct(s.Bun)
	r.addProduct(s.Cheese)
	r.modifiers[s.ExtraCheese.ID] = s.ExtraCheese
	r.edges = append(r.edges, s.Edge)
	return r
}

func stockOf(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var p model.Product
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p.StockQuantity
}

// ── In-memory CatalogRepository stub ─────────────────────────────────────────

type stubCatalogRepo struct {
	products  map[uuid.UUID]model.Product
	variants  map[uuid.UUID]model.PriceVariant
	modifiers map[uuid.UUID]model.Modifier
	edges     []model.ProductIngredient
}

var _ repository.CatalogRepository = (*stubCatalogRepo)(nil)

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		products:  map[uuid.UUID]model.Product{},
		variants:  map[uuid.UUID]model.PriceVariant{},
		modifiers: map[uuid.UUID]model.Modifier{},
	}
}

func (r *stubCatalogRepo) addProduct(p model.Product) { r.products[p.ID] = p }

func (r *stubCatalogRepo) GetProduct(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubCatalogRepo) ListProducts(_ context.Context, _ repository.ProductFilter) ([]model.Product, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *stubCatalogRepo) CreateProduct(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = *p
	return nil
}

func (r *stubCatalogRepo) UpdateProduct(_ context.Context, p *model.Product) error {
	cur := r.products[p.ID]
	next := *p
	next.StockQuantity = cur.StockQuantity
	r.products[p.ID] = next
	return nil
}

func (r *stubCatalogRepo) GetPriceVariants(_ context.Context, productID uuid.UUID) ([]model.PriceVariant, error) {
	var out []model.PriceVariant
	for _, v := range r.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *stubCatalogRepo) GetPriceVariant(_ context.Context, id uuid.UUID) (*model.PriceVariant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (r *stubCatalogRepo) CreatePriceVariant(_ context.Context, v *model.PriceVariant) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.variants[v.ID] = *v
	return nil
}

func (r *stubCatalogRepo) DeletePriceVariant(_ context.Context, id uuid.UUID) error {
	if _, ok := r.variants[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.variants, id)
	return nil
}

func (r *stubCatalogRepo) GetModifiers(_ context.Context) ([]model.Modifier, error) {
	var out []model.Modifier
	for _, m := range r.modifiers {
		if m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubCatalogRepo) GetModifier(_ context.Context, id uuid.UUID) (*model.Modifier, error) {
	m, ok := r.modifiers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r *stubCatalogRepo) CreateModifier(_ context.Context, m *model.Modifier) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.modifiers[m.ID] = *m
	return nil
}

func (r *stubCatalogRepo) UpdateModifier(_ context.Context, m *model.Modifier) error {
	r.modifiers[m.ID] = *m
	return nil
}

func (r *stubCatalogRepo) GetProductIngredients(_ context.Context, productID uuid.UUID) ([]model.ProductIngredient, error) {
	var out []model.ProductIngredient
	for _, e := range r.edges {
		if e.ProductID == productID {
			ing := r.products[e.IngredientID]
			e.Ingredient = &ing
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubCatalogRepo) ListIngredientEdges(_ context.Context) ([]model.ProductIngredient, error) {
	return append([]model.ProductIngredient(nil), r.edges...), nil
}

func (r *stubCatalogRepo) CreateIngredientEdge(_ context.Context, e *model.ProductIngredient) error {
	r.edges = append(r.edges, *e)
	return nil
}

func (r *stubCatalogRepo) DeleteIngredientEdge(_ context.Context, productID, ingredientID uuid.UUID) error {
	for i, e := range r.edges {
		if e.ProductID == productID && e.IngredientID == ingredientID {
			r.edges = append(r.edges[:i], r.edges[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubCatalogRepo) ListLowStock(_ context.Context, threshold int) ([]model.Product, error) {
	return nil, nil
}

func (r *stubCatalogRepo) ListOutOfStock(_ context.Context) ([]model.Product, error) {
	return nil, nil
}

func (r *stubCatalogRepo) ListStockTracked(_ context.Context) ([]model.Product, error) {
	return nil, nil
}
