package router

import (
	"time"

	"stockroom/internal/config"
	"stockroom/internal/handler"
	"stockroom/internal/middleware"
	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/internal/service"
	"stockroom/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, orderRepo, saleRepo, cfg)
	catalogSvc := service.NewCatalogService(productRepo, supplierRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo, supplierRepo, saleRepo, userRepo, dispatcher)
	reportSvc := service.NewReportService(saleRepo, supplierRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(catalogSvc, cfg)
	suppliersH := handler.NewSuppliersHandler(catalogSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login/:role", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Inventory — users manage their own products, managers the catalog
		v1.GET("/products", middleware.RequireRole(model.RoleManager, model.RoleUser, model.RoleAdmin), productsH.List)
		v1.GET("/products/low-stock", middleware.RequireRole(model.RoleManager, model.RoleAdmin), productsH.LowStock)
		v1.POST("/products", middleware.RequireRole(model.RoleManager, model.RoleUser), productsH.Create)
		v1.PUT("/products/:id", middleware.RequireRole(model.RoleManager, model.RoleUser), productsH.Update)
		v1.DELETE("/products/:id", middleware.RequireRole(model.RoleManager, model.RoleAdmin), productsH.Deactivate)

		// Suppliers — managers maintain the reference data
		v1.GET("/suppliers", middleware.RequireRole(model.RoleManager, model.RoleUser, model.RoleAdmin), suppliersH.List)
		v1.GET("/suppliers/recommend/:product_id", middleware.RequireRole(model.RoleManager, model.RoleUser, model.RoleCustomer), suppliersH.Recommend)
		v1.POST("/suppliers", middleware.RequireRole(model.RoleManager), suppliersH.Create)

		// Orders — users/customers place, managers decide
		v1.POST("/orders", middleware.RequireRole(model.RoleUser, model.RoleCustomer), ordersH.Place)
		v1.GET("/orders/pending", middleware.RequireRole(model.RoleManager), ordersH.ListPending)
		v1.GET("/orders/confirmed", middleware.RequireRole(model.RoleManager, model.RoleUser, model.RoleCustomer, model.RoleAdmin), ordersH.ListConfirmed)
		v1.POST("/orders/:id/approve", middleware.RequireRole(model.RoleManager), ordersH.Approve)
		v1.POST("/orders/:id/reject", middleware.RequireRole(model.RoleManager), ordersH.Reject)

		// Walk-in sales
		v1.POST("/sales", middleware.RequireRole(model.RoleManager, model.RoleUser), ordersH.RecordSale)

		// Analytics
		v1.GET("/analytics/summary", middleware.RequireRole(model.RoleManager, model.RoleAdmin), reportsH.Summary)

		// User administration
		users := v1.Group("/users", middleware.RequireRole(model.RoleManager, model.RoleAdmin))
		{
			users.GET("", usersH.List)
			users.POST("/:id/approve", usersH.Approve)
			users.DELETE("/:id", usersH.Reject)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
