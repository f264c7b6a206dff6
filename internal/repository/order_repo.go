package repository

import (
	"context"
	"time"

	"counterpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter bounds order listings. From is inclusive, To exclusive; nil
// bounds are open ("all time").
type OrderFilter struct {
	From  *time.Time
	To    *time.Time
	Page  int
	Limit int
}

type OrderRepository interface {
	// Writes used inside the checkout transaction; callers pass the tx.
	NextNumberTx(ctx context.Context, tx *gorm.DB) (int, error)
	InsertOrderTx(ctx context.Context, tx *gorm.DB, o *model.Order) error
	InsertOrderLineTx(ctx context.Context, tx *gorm.DB, l *model.OrderLine) error

	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	// FindInRange returns every order (with lines) in the range, oldest first.
	FindInRange(ctx context.Context, from, to *time.Time) ([]model.Order, error)

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

// NextNumberTx hands out the next human-readable order number. It must run
// inside the commit transaction so the unique index on number serializes
// concurrent registers.
func (r *orderRepo) NextNumberTx(ctx context.Context, tx *gorm.DB) (int, error) {
	var last int
	err := tx.WithContext(ctx).Model(&model.Order{}).
		Select("COALESCE(MAX(number), 0)").Scan(&last).Error
	return last + 1, err
}

func (r *orderRepo) InsertOrderTx(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return tx.WithContext(ctx).Omit("Lines").Create(o).Error
}

func (r *orderRepo) InsertOrderLineTx(ctx context.Context, tx *gorm.DB, l *model.OrderLine) error {
	return tx.WithContext(ctx).Create(l).Error
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	if err := preloadLines(r.db.WithContext(ctx)).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func inRange(q *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", *to)
	}
	return q
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	q := inRange(r.db.WithContext(ctx).Model(&model.Order{}), filter.From, filter.To)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var orders []model.Order
	err := preloadLines(q).Order("number DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) FindInRange(ctx context.Context, from, to *time.Time) ([]model.Order, error) {
	var orders []model.Order
	q := inRange(r.db.WithContext(ctx).Model(&model.Order{}), from, to)
	err := preloadLines(q).Order("created_at ASC").Find(&orders).Error
	return orders, err
}
