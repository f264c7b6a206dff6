package infra

import (
	"fmt"

	"counterpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the store selected by driver and migrates the schema.
// "sqlite" is the local single-register file store; "postgres" lets a few
// registers share one database.
func NewDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		// WAL lets a report read while a commit writes; immediate transactions
		// plus the busy timeout make a second desktop instance wait for the
		// write lock instead of failing halfway through a commit.
		dialector = sqlite.Open(dsn + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// RunMigrations creates or updates every table. Also used by tests against
// an in-memory sqlite database.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Category{},
		&model.Supplier{},
		&model.Product{},
		&model.PriceVariant{},
		&model.Modifier{},
		&model.ProductIngredient{},
		&model.Order{},
		&model.OrderLine{},
		&model.StockAdjustment{},
	)
}
