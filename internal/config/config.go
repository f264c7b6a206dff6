package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port           int    `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"` // development | production
	WorkerPoolSize int    `mapstructure:"WORKER_POOL_SIZE"`

	// Database. DB_DRIVER selects the gorm dialector: "sqlite" treats
	// DATABASE_URL as a file path, "postgres" as a DSN.
	DBDriver    string `mapstructure:"DB_DRIVER"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis. Empty disables the catalog cache and stock alerts.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Business
	TaxRate             string `mapstructure:"TAX_RATE"`
	LowStockThreshold   int    `mapstructure:"LOW_STOCK_THRESHOLD"`
	CatalogCacheTTLSecs int    `mapstructure:"CATALOG_CACHE_TTL_SECONDS"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", 8000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("WORKER_POOL_SIZE", 2)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "counterpos.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("TAX_RATE", "0")
	v.SetDefault("LOW_STOCK_THRESHOLD", 10)
	v.SetDefault("CATALOG_CACHE_TTL_SECONDS", 300)

	// Optional .env file for local development; does not fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return fmt.Errorf("TAX_RATE: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("TAX_RATE must not be negative")
	}
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative")
	}
	return nil
}

// Tax returns the configured tax rate as a fraction (0.12 = 12%).
func (c *Config) Tax() decimal.Decimal {
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// CatalogCacheTTL is how long the modifier list stays cached in redis.
func (c *Config) CatalogCacheTTL() time.Duration {
	return time.Duration(c.CatalogCacheTTLSecs) * time.Second
}
