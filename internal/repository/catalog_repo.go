package repository

import (
	"context"

	"counterpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductFilter narrows ListProducts. Zero values mean "no filter".
type ProductFilter struct {
	Category        string
	Name            string
	IncludeInactive bool
}

// CatalogRepository is the data side of the catalog reader plus the writes
// used by catalog management. Services depend on this interface, not on the
// gorm implementation.
type CatalogRepository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) error
	UpdateProduct(ctx context.Context, p *model.Product) error

	GetPriceVariants(ctx context.Context, productID uuid.UUID) ([]model.PriceVariant, error)
	GetPriceVariant(ctx context.Context, id uuid.UUID) (*model.PriceVariant, error)
	CreatePriceVariant(ctx context.Context, v *model.PriceVariant) error
	DeletePriceVariant(ctx context.Context, id uuid.UUID) error

	GetModifiers(ctx context.Context) ([]model.Modifier, error)
	GetModifier(ctx context.Context, id uuid.UUID) (*model.Modifier, error)
	CreateModifier(ctx context.Context, m *model.Modifier) error
	UpdateModifier(ctx context.Context, m *model.Modifier) error

	GetProductIngredients(ctx context.Context, productID uuid.UUID) ([]model.ProductIngredient, error)
	ListIngredientEdges(ctx context.Context) ([]model.ProductIngredient, error)
	CreateIngredientEdge(ctx context.Context, e *model.ProductIngredient) error
	DeleteIngredientEdge(ctx context.Context, productID, ingredientID uuid.UUID) error

	// Stock queries over active StockTracked products.
	ListLowStock(ctx context.Context, threshold int) ([]model.Product, error)
	ListOutOfStock(ctx context.Context) ([]model.Product, error)
	ListStockTracked(ctx context.Context) ([]model.Product, error)
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository { return &catalogRepo{db: db} }

func (r *catalogRepo) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepo) ListProducts(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if !filter.IncludeInactive {
		q = q.Where("active = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Name != "" {
		q = q.Where("lower(name) LIKE lower(?)", "%"+filter.Name+"%")
	}
	var products []model.Product
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *catalogRepo) CreateProduct(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *catalogRepo) UpdateProduct(ctx context.Context, p *model.Product) error {
	// Stock is owned by the stock repository; never overwrite it from a
	// catalog edit that may hold a stale copy.
	return r.db.WithContext(ctx).Model(p).Omit("stock_quantity", "created_at").Select("*").Updates(p).Error
}

func (r *catalogRepo) GetPriceVariants(ctx context.Context, productID uuid.UUID) ([]model.PriceVariant, error) {
	var variants []model.PriceVariant
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("price ASC").Find(&variants).Error
	return variants, err
}

func (r *catalogRepo) GetPriceVariant(ctx context.Context, id uuid.UUID) (*model.PriceVariant, error) {
	var v model.PriceVariant
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *catalogRepo) CreatePriceVariant(ctx context.Context, v *model.PriceVariant) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *catalogRepo) DeletePriceVariant(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.PriceVariant{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *catalogRepo) GetModifiers(ctx context.Context) ([]model.Modifier, error) {
	var mods []model.Modifier
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&mods).Error
	return mods, err
}

func (r *catalogRepo) GetModifier(ctx context.Context, id uuid.UUID) (*model.Modifier, error) {
	var m model.Modifier
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *catalogRepo) CreateModifier(ctx context.Context, m *model.Modifier) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *catalogRepo) UpdateModifier(ctx context.Context, m *model.Modifier) error {
	return r.db.WithContext(ctx).Model(m).Omit("created_at").Select("*").Updates(m).Error
}

func (r *catalogRepo) GetProductIngredients(ctx context.Context, productID uuid.UUID) ([]model.ProductIngredient, error) {
	var edges []model.ProductIngredient
	err := r.db.WithContext(ctx).Preload("Ingredient").
		Where("product_id = ?", productID).Find(&edges).Error
	return edges, err
}

func (r *catalogRepo) ListIngredientEdges(ctx context.Context) ([]model.ProductIngredient, error) {
	var edges []model.ProductIngredient
	err := r.db.WithContext(ctx).Find(&edges).Error
	return edges, err
}

func (r *catalogRepo) CreateIngredientEdge(ctx context.Context, e *model.ProductIngredient) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *catalogRepo) DeleteIngredientEdge(ctx context.Context, productID, ingredientID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("product_id = ? AND ingredient_id = ?", productID, ingredientID).
		Delete(&model.ProductIngredient{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *catalogRepo) trackedActive(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("tracking_mode = ? AND active = ?", model.StockTracked, true)
}

func (r *catalogRepo) ListLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.trackedActive(ctx).
		Where("stock_quantity > 0 AND stock_quantity <= ?", threshold).
		Order("stock_quantity ASC").Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *catalogRepo) ListOutOfStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.trackedActive(ctx).
		Where("stock_quantity <= 0").
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *catalogRepo) ListStockTracked(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.trackedActive(ctx).Order("name ASC").Find(&products).Error
	return products, err
}
