package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/agoodis/product-management-system/internal/config"
	"github.com/agoodis/product-management-system/internal/handler"
	"github.com/agoodis/product-management-system/internal/metrics"
	"github.com/agoodis/product-management-system/internal/middleware"
	"github.com/agoodis/product-management-system/internal/ownership"
	"github.com/agoodis/product-management-system/internal/repository"
	"github.com/agoodis/product-management-system/internal/service"
	"github.com/agoodis/product-management-system/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
//
// productRepo is built once by the caller and shared with the worker pool, so
// every mutation path in the process funnels through the same per-barcode
// guard.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, productRepo repository.ProductRepository, dispatcher *worker.Dispatcher) *gin.Engine {
	// Refuse to start when the field authority table has holes. A silent
	// gap here would corrupt merged products on the next import.
	if err := ownership.Validate(); err != nil {
		panic(err)
	}

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
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP
	r.Use(middleware.Metrics())

	// ── Repositories ─────────────────────────────────────────────────────────
	importLogRepo := repository.NewImportLogRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	reconciler := service.NewReconciler(productRepo)
	importSvc := service.NewImportService(reconciler, importLogRepo, rdb)
	productSvc := service.NewProductService(productRepo, rdb, cfg.DefaultPageSize)
	exportSvc := service.NewExportService(productRepo)
	calcSvc := service.NewCalculationService(productRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productsH := handler.NewProductsHandler(productSvc)
	importsH := handler.NewImportsHandler(importSvc)
	exportsH := handler.NewExportsHandler(exportSvc)
	calcH := handler.NewCalculationsHandler(calcSvc, dispatcher, cfg.LowStockThreshold)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", productsH.List)
			products.GET("/filters/brands", productsH.Brands)
			products.GET("/filters/categories", productsH.Categories)
			products.GET("/:barcode", productsH.Get)
			products.PATCH("/:barcode", productsH.Patch)
		}

		imports := v1.Group("/imports")
		{
			imports.POST("/:source", importsH.Run)
			imports.GET("/logs", importsH.Logs)
		}

		v1.GET("/exports/:target", exportsH.Download)

		calcs := v1.Group("/calculations")
		{
			calcs.POST("/recalculate", calcH.Recalculate)
			calcs.GET("/low-stock", calcH.LowStock)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
