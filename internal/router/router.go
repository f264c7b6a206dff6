package router

import (
	"counterpos/internal/config"
	"counterpos/internal/handler"
	"counterpos/internal/infra"
	"counterpos/internal/middleware"
	"counterpos/internal/repository"
	"counterpos/internal/service"
	"counterpos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, alertCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	// ── Repositories ─────────────────────────────────────────────────────────
	catalogRepo := repository.NewCatalogRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	stockRepo := repository.NewStockRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// One ledger per process: every stock mutation goes through it.
	ledger := service.NewStockLedger(stockRepo)
	dispatcher := worker.NewDispatcher(rdb, alertCB)

	catalogSvc := service.NewCatalogService(catalogRepo, categoryRepo, supplierRepo, rdb, cfg.CatalogCacheTTL())
	inventorySvc := service.NewInventoryService(catalogRepo, stockRepo, ledger, cfg.LowStockThreshold)
	orderSvc := service.NewOrderService(orderRepo, catalogRepo, ledger, dispatcher, cfg.LowStockThreshold)
	reportSvc := service.NewReportService(orderRepo, catalogRepo, inventorySvc, cfg.LowStockThreshold)

	newCart := func() *service.CartSession { return service.NewCartSession(catalogRepo, cfg.Tax()) }

	// ── Handlers ─────────────────────────────────────────────────────────────
	catalogH := handler.NewCatalogHandler(catalogSvc)
	cartH := handler.NewCartHandler(newCart(), orderSvc)
	ordersH := handler.NewOrdersHandler(orderSvc, newCart)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, alertCB))

	v1 := r.Group("/v1")
	{
		v1.GET("/products", catalogH.ListProducts)
		v1.POST("/products", catalogH.CreateProduct)
		v1.GET("/products/:id", catalogH.GetProduct)
		v1.PUT("/products/:id", catalogH.UpdateProduct)
		v1.GET("/products/:id/variants", catalogH.ListVariants)
		v1.POST("/products/:id/variants", catalogH.CreateVariant)
		v1.DELETE("/products/:id/variants/:variant_id", catalogH.DeleteVariant)
		v1.GET("/products/:id/ingredients", catalogH.ListIngredients)
		v1.POST("/products/:id/ingredients", catalogH.LinkIngredient)
		v1.DELETE("/products/:id/ingredients/:ingredient_id", catalogH.UnlinkIngredient)
		v1.GET("/products/:id/ingredient-cost", catalogH.IngredientCost)
		v1.POST("/products/:id/stock", inventoryH.Adjust)

		v1.GET("/modifiers", catalogH.ListModifiers)
		v1.POST("/modifiers", catalogH.CreateModifier)
		v1.PUT("/modifiers/:id", catalogH.UpdateModifier)

		v1.GET("/categories", catalogH.ListCategories)
		v1.POST("/categories", catalogH.CreateCategory)
		v1.GET("/suppliers", catalogH.ListSuppliers)
		v1.POST("/suppliers", catalogH.CreateSupplier)

		v1.POST("/pricing/quote", cartH.Quote)

		cart := v1.Group("/cart")
		{
			cart.GET("", cartH.Get)
			cart.DELETE("", cartH.Clear)
			cart.POST("/lines", cartH.AddLine)
			cart.PUT("/lines/:line_id", cartH.ReplaceLine)
			cart.PATCH("/lines/:line_id", cartH.SetQuantity)
			cart.DELETE("/lines/:line_id", cartH.RemoveLine)
			cart.POST("/checkout", cartH.Checkout)
		}

		v1.POST("/orders", ordersH.Create)
		v1.GET("/orders", ordersH.List)
		v1.GET("/orders/:id", ordersH.Get)

		v1.GET("/inventory/adjustments", inventoryH.History)

		reports := v1.Group("/reports")
		{
			reports.GET("/sales", reportsH.Sales)
			reports.GET("/inventory", reportsH.Inventory)
		}
	}

	return r
}
