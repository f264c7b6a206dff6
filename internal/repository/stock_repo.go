package repository

import (
	"context"

	"counterpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdjustmentFilter defines filters for listing the stock log.
type AdjustmentFilter struct {
	ProductID *uuid.UUID
	Kind      string
	Page      int
	Limit     int
}

// StockRepository is the only writer of stock_quantity columns.
type StockRepository interface {
	// AdjustStockTx applies new = max(0, current + delta) to the target and
	// returns the stock before and after.
	AdjustStockTx(ctx context.Context, tx *gorm.DB, target model.StockTarget, delta int) (before, after int, err error)
	// CurrentStockTx reads a counter inside the caller's transaction.
	CurrentStockTx(ctx context.Context, tx *gorm.DB, target model.StockTarget) (int, error)
	InsertAdjustmentTx(ctx context.Context, tx *gorm.DB, a *model.StockAdjustment) error
	ListAdjustments(ctx context.Context, filter AdjustmentFilter) ([]model.StockAdjustment, int64, error)
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

// counter maps a target to the table and row that holds its stock.
func counter(target model.StockTarget) (interface{}, uuid.UUID) {
	if target.IsVariant() {
		return &model.PriceVariant{}, target.VariantID
	}
	return &model.Product{}, target.ProductID
}

func (r *stockRepo) CurrentStockTx(ctx context.Context, tx *gorm.DB, target model.StockTarget) (int, error) {
	table, id := counter(target)
	var stock []int
	// Row lock on postgres; the sqlite dialector drops the clause and relies
	// on the immediate transaction's write lock instead.
	err := tx.WithContext(ctx).Model(table).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Pluck("stock_quantity", &stock).Error
	if err != nil {
		return 0, err
	}
	if len(stock) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return stock[0], nil
}

func (r *stockRepo) AdjustStockTx(ctx context.Context, tx *gorm.DB, target model.StockTarget, delta int) (int, int, error) {
	before, err := r.CurrentStockTx(ctx, tx, target)
	if err != nil {
		return 0, 0, err
	}
	table, id := counter(target)
	err = tx.WithContext(ctx).Model(table).Where("id = ?", id).
		Update("stock_quantity", gorm.Expr(
			"CASE WHEN stock_quantity + ? < 0 THEN 0 ELSE stock_quantity + ? END", delta, delta,
		)).Error
	if err != nil {
		return 0, 0, err
	}
	return before, floorAtZero(before + delta), nil
}

func floorAtZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func (r *stockRepo) InsertAdjustmentTx(ctx context.Context, tx *gorm.DB, a *model.StockAdjustment) error {
	return tx.WithContext(ctx).Create(a).Error
}

func (r *stockRepo) ListAdjustments(ctx context.Context, filter AdjustmentFilter) ([]model.StockAdjustment, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockAdjustment{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var rows []model.StockAdjustment
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}
