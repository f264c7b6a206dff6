package service

import (
	"context"
	"fmt"
	"sync"

	"counterpos/internal/model"
	"counterpos/internal/repository"

	"gorm.io/gorm"
)

// StockLedger is the single serialized stock mutation path. Order commits and
// manual adjustments both run their transaction through Transact and every
// counter change through ApplyTx.
type StockLedger struct {
	mu   sync.Mutex
	repo repository.StockRepository
}

func NewStockLedger(repo repository.StockRepository) *StockLedger {
	return &StockLedger{repo: repo}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Transact runs fn in one transaction while holding the ledger lock, so
// in-process writers never interleave. Cross-process writers on the same
// store are serialized by the database.
func (l *StockLedger) Transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return runTx(ctx, l.repo.DB(), fn)
}

// ApplyTx applies adj.Delta to the counter adj names with the floor at zero,
// fills StockBefore/StockAfter and appends the log row.
func (l *StockLedger) ApplyTx(ctx context.Context, tx *gorm.DB, adj *model.StockAdjustment) error {
	target := model.ProductTarget(adj.ProductID)
	if adj.VariantID != nil {
		target = model.VariantTarget(adj.ProductID, *adj.VariantID)
	}
	before, after, err := l.repo.AdjustStockTx(ctx, tx, target, adj.Delta)
	if err != nil {
		return fmt.Errorf("adjust stock of %s: %w", adj.ProductID, err)
	}
	adj.StockBefore = before
	adj.StockAfter = after
	if err := l.repo.InsertAdjustmentTx(ctx, tx, adj); err != nil {
		return fmt.Errorf("log stock adjustment: %w", err)
	}
	return nil
}

// CurrentTx reads a counter inside tx.
func (l *StockLedger) CurrentTx(ctx context.Context, tx *gorm.DB, target model.StockTarget) (int, error) {
	return l.repo.CurrentStockTx(ctx, tx, target)
}
