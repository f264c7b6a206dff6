// cmd/seed/main.go seeds a demo catalog into the configured store.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"os"
	"time"

	"counterpos/internal/config"
	"counterpos/internal/dto"
	"counterpos/internal/infra"
	"counterpos/internal/model"
	"counterpos/internal/repository"
	"counterpos/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	catalog := service.NewCatalogService(
		repository.NewCatalogRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewSupplierRepository(db),
		nil, 0,
	)
	ctx := context.Background()

	for _, name := range []string{"Burgers", "Ingredients", "Drinks"} {
		if _, err := catalog.CreateCategory(ctx, dto.CreateCategoryRequest{Name: name}); err != nil && !service.IsValidation(err) {
			log.Fatal().Err(err).Str("category", name).Msg("seed category")
		}
	}

	madeToOrder := string(model.MadeToOrder)
	burger := mustProduct(ctx, catalog, dto.CreateProductRequest{
		Name: "Burger", Category: "Burgers", UnitPrice: money("150"), Cost: money("60"), StockQuantity: 50,
	})
	bun := mustProduct(ctx, catalog, dto.CreateProductRequest{
		Name: "Bun", Category: "Ingredients", UnitPrice: money("10"), Cost: money("4"), StockQuantity: 40,
	})
	cheese := mustProduct(ctx, catalog, dto.CreateProductRequest{
		Name: "Cheese Slice", Category: "Ingredients", UnitPrice: money("12"), Cost: money("5"), StockQuantity: 60,
	})
	mustProduct(ctx, catalog, dto.CreateProductRequest{
		Name: "Iced Tea", Category: "Drinks", UnitPrice: money("45"), Cost: money("12"), TrackingMode: madeToOrder,
	})

	if err := catalog.LinkIngredient(ctx, uuid.MustParse(burger.ID), dto.LinkIngredientRequest{
		IngredientID: bun.ID, QuantityPerUnit: 1,
	}); err != nil {
		log.Fatal().Err(err).Msg("link bun")
	}
	if _, err := catalog.CreatePriceVariant(ctx, uuid.MustParse(burger.ID), dto.CreatePriceVariantRequest{
		Name: "Double", Price: money("220"), Cost: money("95"), StockQuantity: 20,
	}); err != nil {
		log.Fatal().Err(err).Msg("seed variant")
	}
	if _, err := catalog.CreateModifier(ctx, dto.ModifierRequest{
		Name: "Extra Cheese", Price: money("20"), LinkedProductID: &cheese.ID, DeductQuantity: 2,
	}); err != nil {
		log.Fatal().Err(err).Msg("seed modifier")
	}
	if _, err := catalog.CreateModifier(ctx, dto.ModifierRequest{Name: "No Onion", Price: decimal.Zero}); err != nil {
		log.Fatal().Err(err).Msg("seed modifier")
	}

	log.Info().Str("driver", cfg.DBDriver).Msg("demo catalog seeded")
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustProduct(ctx context.Context, catalog service.CatalogService, req dto.CreateProductRequest) *dto.ProductResponse {
	p, err := catalog.CreateProduct(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Str("product", req.Name).Msg("seed product")
	}
	return p
}
