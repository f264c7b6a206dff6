package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"counterpos/internal/dto"
	"counterpos/internal/model"
	"counterpos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const modifiersCacheKey = "catalog:modifiers"

// CatalogService is the catalog reader plus catalog management. It is the only
// writer of products, variants, modifiers and ingredient edges.
type CatalogService interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context, filter dto.ProductFilter) ([]dto.ProductResponse, error)
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)

	GetPriceVariants(ctx context.Context, productID uuid.UUID) ([]dto.PriceVariantResponse, error)
	CreatePriceVariant(ctx context.Context, productID uuid.UUID, req dto.CreatePriceVariantRequest) (*dto.PriceVariantResponse, error)
	DeletePriceVariant(ctx context.Context, id uuid.UUID) error

	GetModifiers(ctx context.Context) ([]dto.ModifierResponse, error)
	CreateModifier(ctx context.Context, req dto.ModifierRequest) (*dto.ModifierResponse, error)
	UpdateModifier(ctx context.Context, id uuid.UUID, req dto.ModifierRequest) (*dto.ModifierResponse, error)

	GetProductIngredients(ctx context.Context, productID uuid.UUID) ([]dto.IngredientResponse, error)
	LinkIngredient(ctx context.Context, productID uuid.UUID, req dto.LinkIngredientRequest) error
	UnlinkIngredient(ctx context.Context, productID, ingredientID uuid.UUID) error
	GetIngredientTotalCost(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)

	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	ListCategories(ctx context.Context) ([]dto.CategoryResponse, error)
	CreateSupplier(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	ListSuppliers(ctx context.Context) ([]dto.SupplierResponse, error)
}

type catalogService struct {
	repo       repository.CatalogRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	rdb        *redis.Client
	cacheTTL   time.Duration
}

// NewCatalogService wires the catalog. rdb may be nil, which disables the
// modifier cache.
func NewCatalogService(
	repo repository.CatalogRepository,
	categories repository.CategoryRepository,
	suppliers repository.SupplierRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
) CatalogService {
	return &catalogService{repo: repo, categories: categories, suppliers: suppliers, rdb: rdb, cacheTTL: cacheTTL}
}

// ── Products ──────────────────────────────────────────────────────────────────

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, lookupError("product", id, err)
	}
	return productToResponse(p), nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter dto.ProductFilter) ([]dto.ProductResponse, error) {
	products, err := s.repo.ListProducts(ctx, repository.ProductFilter{
		Name:            filter.Name,
		Category:        filter.Category,
		IncludeInactive: filter.IncludeInactive,
	})
	if err != nil {
		return nil, err
	}
	return productsToResponse(products), nil
}

func (s *catalogService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name, category := strings.TrimSpace(req.Name), strings.TrimSpace(req.Category)
	if name == "" {
		return nil, validationError("name", "is required")
	}
	if category == "" {
		return nil, validationError("category", "is required")
	}
	if err := checkMoney(req.UnitPrice, req.Cost); err != nil {
		return nil, err
	}
	if req.StockQuantity < 0 {
		return nil, validationError("stock_quantity", "must not be negative")
	}
	mode := model.StockTracked
	if req.TrackingMode != "" {
		mode = model.TrackingMode(req.TrackingMode)
		if !mode.Valid() {
			return nil, validationError("tracking_mode", "unknown tracking mode %q", req.TrackingMode)
		}
	}
	supplierID, err := s.supplierRef(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}

	p := &model.Product{
		Name:          name,
		Category:      category,
		UnitPrice:     req.UnitPrice,
		Cost:          req.Cost,
		MarkupPercent: markup(req.UnitPrice, req.Cost),
		StockQuantity: req.StockQuantity,
		TrackingMode:  mode,
		Available:     req.Available == nil || *req.Available,
		SupplierID:    supplierID,
		Active:        true,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return productToResponse(p), nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, lookupError("product", id, err)
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, validationError("name", "is required")
		}
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		if strings.TrimSpace(*req.Category) == "" {
			return nil, validationError("category", "is required")
		}
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.UnitPrice != nil {
		p.UnitPrice = *req.UnitPrice
	}
	if req.Cost != nil {
		p.Cost = *req.Cost
	}
	if err := checkMoney(p.UnitPrice, p.Cost); err != nil {
		return nil, err
	}
	p.MarkupPercent = markup(p.UnitPrice, p.Cost)
	if req.TrackingMode != nil {
		mode := model.TrackingMode(*req.TrackingMode)
		if !mode.Valid() {
			return nil, validationError("tracking_mode", "unknown tracking mode %q", *req.TrackingMode)
		}
		p.TrackingMode = mode
	}
	if req.Available != nil {
		p.Available = *req.Available
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.SupplierID != nil {
		if p.SupplierID, err = s.supplierRef(ctx, req.SupplierID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return productToResponse(p), nil
}

func (s *catalogService) supplierRef(ctx context.Context, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, validationError("supplier_id", "invalid id")
	}
	if _, err := s.suppliers.FindByID(ctx, id); err != nil {
		return nil, lookupError("supplier", id, err)
	}
	return &id, nil
}

func checkMoney(price, cost decimal.Decimal) error {
	if price.IsNegative() {
		return validationError("unit_price", "must not be negative")
	}
	if cost.IsNegative() {
		return validationError("cost", "must not be negative")
	}
	return nil
}

// markup is (price - cost) / cost × 100, or zero when cost is zero.
func markup(price, cost decimal.Decimal) decimal.Decimal {
	if !cost.IsPositive() {
		return decimal.Zero
	}
	return price.Sub(cost).Div(cost).Mul(decimal.NewFromInt(100)).Round(2)
}

// ── Price variants ────────────────────────────────────────────────────────────

func (s *catalogService) GetPriceVariants(ctx context.Context, productID uuid.UUID) ([]dto.PriceVariantResponse, error) {
	variants, err := s.repo.GetPriceVariants(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PriceVariantResponse, 0, len(variants))
	for i := range variants {
		out = append(out, *variantToResponse(&variants[i]))
	}
	return out, nil
}

func (s *catalogService) CreatePriceVariant(ctx context.Context, productID uuid.UUID, req dto.CreatePriceVariantRequest) (*dto.PriceVariantResponse, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return nil, lookupError("product", productID, err)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name", "is required")
	}
	if err := checkMoney(req.Price, req.Cost); err != nil {
		return nil, err
	}
	if req.StockQuantity < 0 {
		return nil, validationError("stock_quantity", "must not be negative")
	}
	v := &model.PriceVariant{
		ProductID:     productID,
		Name:          name,
		Cost:          req.Cost,
		MarkupPercent: markup(req.Price, req.Cost),
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	}
	if err := s.repo.CreatePriceVariant(ctx, v); err != nil {
		return nil, fmt.Errorf("create price variant: %w", err)
	}
	return variantToResponse(v), nil
}

func (s *catalogService) DeletePriceVariant(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePriceVariant(ctx, id); err != nil {
		return lookupError("price variant", id, err)
	}
	return nil
}

// ── Modifiers ─────────────────────────────────────────────────────────────────

// GetModifiers serves the active modifier list, from redis when cached.
func (s *catalogService) GetModifiers(ctx context.Context) ([]dto.ModifierResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, modifiersCacheKey).Bytes(); err == nil {
			var out []dto.ModifierResponse
			if jsonErr := json.Unmarshal(cached, &out); jsonErr == nil {
				return out, nil
			}
		}
	}

	mods, err := s.repo.GetModifiers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ModifierResponse, 0, len(mods))
	for i := range mods {
		out = append(out, *modifierToResponse(&mods[i]))
	}

	if s.rdb != nil {
		if b, jsonErr := json.Marshal(out); jsonErr == nil {
			_ = s.rdb.Set(context.Background(), modifiersCacheKey, b, s.cacheTTL).Err()
		}
	}
	return out, nil
}

func (s *catalogService) invalidateModifiers(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, modifiersCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("modifier cache invalidation failed")
	}
}

func (s *catalogService) modifierFields(ctx context.Context, m *model.Modifier, req dto.ModifierRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return validationError("name", "is required")
	}
	if req.Price.IsNegative() {
		return validationError("price", "must not be negative")
	}
	if req.DeductQuantity < 0 {
		return validationError("deduct_quantity", "must not be negative")
	}
	m.Name = name
	m.Price = req.Price
	m.LinkedProductID = nil
	m.DeductQuantity = req.DeductQuantity
	if req.LinkedProductID != nil && *req.LinkedProductID != "" {
		id, err := uuid.Parse(*req.LinkedProductID)
		if err != nil {
			return validationError("linked_product_id", "invalid id")
		}
		if _, err := s.repo.GetProduct(ctx, id); err != nil {
			return lookupError("product", id, err)
		}
		m.LinkedProductID = &id
		if m.DeductQuantity == 0 {
			m.DeductQuantity = 1
		}
	}
	if req.Active != nil {
		m.Active = *req.Active
	}
	return nil
}

func (s *catalogService) CreateModifier(ctx context.Context, req dto.ModifierRequest) (*dto.ModifierResponse, error) {
	m := &model.Modifier{Active: true}
	if err := s.modifierFields(ctx, m, req); err != nil {
		return nil, err
	}
	if err := s.repo.CreateModifier(ctx, m); err != nil {
		return nil, fmt.Errorf("create modifier: %w", err)
	}
	s.invalidateModifiers(ctx)
	return modifierToResponse(m), nil
}

func (s *catalogService) UpdateModifier(ctx context.Context, id uuid.UUID, req dto.ModifierRequest) (*dto.ModifierResponse, error) {
	m, err := s.repo.GetModifier(ctx, id)
	if err != nil {
		return nil, lookupError("modifier", id, err)
	}
	if err := s.modifierFields(ctx, m, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateModifier(ctx, m); err != nil {
		return nil, fmt.Errorf("update modifier: %w", err)
	}
	s.invalidateModifiers(ctx)
	return modifierToResponse(m), nil
}

// ── Ingredients ───────────────────────────────────────────────────────────────

func (s *catalogService) GetProductIngredients(ctx context.Context, productID uuid.UUID) ([]dto.IngredientResponse, error) {
	edges, err := s.repo.GetProductIngredients(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.IngredientResponse, 0, len(edges))
	for _, e := range edges {
		r := dto.IngredientResponse{IngredientID: e.IngredientID.String(), QuantityPerUnit: e.QuantityPerUnit}
		if e.Ingredient != nil {
			r.Name = e.Ingredient.Name
			r.StockQuantity = e.Ingredient.StockQuantity
			r.Cost = e.Ingredient.Cost
		}
		out = append(out, r)
	}
	return out, nil
}

// LinkIngredient adds the edge productID -> ingredient. Self-links and edges
// that would close a cycle are rejected.
func (s *catalogService) LinkIngredient(ctx context.Context, productID uuid.UUID, req dto.LinkIngredientRequest) error {
	ingredientID, err := uuid.Parse(req.IngredientID)
	if err != nil {
		return validationError("ingredient_id", "invalid id")
	}
	if req.QuantityPerUnit < 1 {
		return validationError("quantity_per_unit", "must be at least 1")
	}
	if ingredientID == productID {
		return validationError("ingredient_id", "a product cannot be its own ingredient")
	}

	parent, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return lookupError("product", productID, err)
	}
	if _, err := s.repo.GetProduct(ctx, ingredientID); err != nil {
		return lookupError("product", ingredientID, err)
	}

	edges, err := s.repo.ListIngredientEdges(ctx)
	if err != nil {
		return err
	}
	bom := NewBOM(edges)
	if path := bom.PathTo(ingredientID, productID); path != nil {
		products, err := s.productIndex(ctx)
		if err != nil {
			return err
		}
		return bom.cycleError(parent.ID, append([]uuid.UUID{productID}, path...), products)
	}

	err = s.repo.CreateIngredientEdge(ctx, &model.ProductIngredient{
		ProductID:       productID,
		IngredientID:    ingredientID,
		QuantityPerUnit: req.QuantityPerUnit,
	})
	if err != nil {
		return fmt.Errorf("link ingredient: %w", err)
	}
	return nil
}

func (s *catalogService) UnlinkIngredient(ctx context.Context, productID, ingredientID uuid.UUID) error {
	if err := s.repo.DeleteIngredientEdge(ctx, productID, ingredientID); err != nil {
		return lookupError("ingredient edge", ingredientID, err)
	}
	return nil
}

func (s *catalogService) GetIngredientTotalCost(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return decimal.Zero, lookupError("product", productID, err)
	}
	edges, err := s.repo.ListIngredientEdges(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	products, err := s.productIndex(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	bom := NewBOM(edges)
	if len(bom[productID]) == 0 {
		return decimal.Zero, nil
	}
	return bom.TotalCost(productID, products)
}

func (s *catalogService) productIndex(ctx context.Context) (map[uuid.UUID]*model.Product, error) {
	products, err := s.repo.ListProducts(ctx, repository.ProductFilter{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	idx := make(map[uuid.UUID]*model.Product, len(products))
	for i := range products {
		idx[products[i].ID] = &products[i]
	}
	return idx, nil
}

// ── Categories & suppliers ────────────────────────────────────────────────────

func (s *catalogService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name", "is required")
	}
	if _, err := s.categories.FindByName(ctx, name); err == nil {
		return nil, validationError("name", "category %q already exists", name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c := &model.Category{Name: name, Description: req.Description, Active: true}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &dto.CategoryResponse{ID: c.ID.String(), Name: c.Name, Description: c.Description}, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.CategoryResponse{ID: c.ID.String(), Name: c.Name, Description: c.Description})
	}
	return out, nil
}

func (s *catalogService) CreateSupplier(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name", "is required")
	}
	sup := &model.Supplier{Name: name, Phone: req.Phone, Email: req.Email, Active: true}
	if err := s.suppliers.Create(ctx, sup); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return supplierToResponse(sup), nil
}

func (s *catalogService) ListSuppliers(ctx context.Context) ([]dto.SupplierResponse, error) {
	list, err := s.suppliers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for i := range list {
		out = append(out, *supplierToResponse(&list[i]))
	}
	return out, nil
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Category:      p.Category,
		UnitPrice:     p.UnitPrice,
		Cost:          p.Cost,
		MarkupPercent: p.MarkupPercent,
		StockQuantity: p.StockQuantity,
		TrackingMode:  string(p.TrackingMode),
		Available:     p.Available,
		Active:        p.Active,
		SupplierID:    uuidString(p.SupplierID),
	}
}

func variantToResponse(v *model.PriceVariant) *dto.PriceVariantResponse {
	return &dto.PriceVariantResponse{
		ID:            v.ID.String(),
		ProductID:     v.ProductID.String(),
		Name:          v.Name,
		Price:         v.Price,
		Cost:          v.Cost,
		MarkupPercent: v.MarkupPercent,
		StockQuantity: v.StockQuantity,
	}
}

func modifierToResponse(m *model.Modifier) *dto.ModifierResponse {
	return &dto.ModifierResponse{
		ID:              m.ID.String(),
		Name:            m.Name,
		Price:           m.Price,
		LinkedProductID: uuidString(m.LinkedProductID),
		DeductQuantity:  m.DeductQuantity,
		Active:          m.Active,
	}
}

func supplierToResponse(s *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{ID: s.ID.String(), Name: s.Name, Phone: s.Phone, Email: s.Email}
}
