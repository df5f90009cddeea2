package router

import (
	"time"

	"github.com/CuasDev/fel/internal/billing"
	"github.com/CuasDev/fel/internal/config"
	"github.com/CuasDev/fel/internal/handler"
	"github.com/CuasDev/fel/internal/middleware"
	"github.com/CuasDev/fel/internal/model"
	"github.com/CuasDev/fel/internal/repository"
	"github.com/CuasDev/fel/internal/service"
	"github.com/CuasDev/fel/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// rdb may be nil, in which case invoice e-mail delivery is disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		r.Use(middleware.NewMetrics(reg).Handler())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// A nil *redis.Client must not become a non-nil MailQueue.
	var queue service.MailQueue
	if rdb != nil {
		queue = worker.NewDispatcher(rdb)
	}

	authSvc := service.NewAuthService(userRepo, cfg)
	customerSvc := service.NewCustomerService(customerRepo, invoiceRepo)
	productSvc := service.NewProductService(productRepo, invoiceRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, customerRepo, productRepo, queue, service.InvoiceOptions{
		DueDays:     cfg.InvoiceDueDays,
		Lifecycle:   billing.Lifecycle{Strict: cfg.InvoiceStrictTransitions},
		CompanyName: cfg.CompanyName,
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	usersH := handler.NewUsersHandler(authSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	productsH := handler.NewProductsHandler(productSvc)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	api := r.Group("/api/v1")

	users := api.Group("/users")
	{
		users.POST("/register", middleware.LoginRateLimiter(), usersH.Register)
		users.POST("/login", middleware.LoginRateLimiter(), usersH.Login)
		users.POST("/refresh", usersH.Refresh)
	}

	// Protected routes
	v1 := api.Group("", middleware.JWTAuth(cfg.JWTSecret))
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	managers := middleware.RequireRole(model.RoleAdmin, model.RoleManager)
	{
		v1.GET("/users/profile", usersH.Profile)
		v1.PUT("/users/profile", usersH.UpdateProfile)

		admin := v1.Group("/users", adminOnly)
		{
			admin.GET("", usersH.List)
			admin.GET("/:id", usersH.Get)
			admin.PUT("/:id", usersH.Update)
			admin.DELETE("/:id", usersH.Delete)
		}

		customers := v1.Group("/customers")
		{
			customers.POST("", customersH.Create)
			customers.GET("", customersH.List)
			customers.GET("/:id", customersH.Get)
			customers.PUT("/:id", customersH.Update)
			customers.DELETE("/:id", adminOnly, customersH.Delete)
		}

		products := v1.Group("/products")
		{
			products.GET("", productsH.List)
			products.GET("/:id", productsH.Get)
			products.POST("", managers, productsH.Create)
			products.PUT("/:id", managers, productsH.Update)
			products.DELETE("/:id", adminOnly, productsH.Delete)
		}

		// Static segments are registered before /:id.
		invoices := v1.Group("/invoices")
		{
			invoices.POST("", invoicesH.Create)
			invoices.GET("", invoicesH.List)
			invoices.GET("/report", invoicesH.Report)
			invoices.GET("/report/export", managers, invoicesH.ExportReport)
			invoices.POST("/preview", invoicesH.Preview)
			invoices.GET("/:id", invoicesH.Get)
			invoices.GET("/:id/pdf", invoicesH.PDF)
			invoices.POST("/:id/send", invoicesH.Send)
			invoices.PATCH("/:id/status", invoicesH.UpdateStatus)
			invoices.DELETE("/:id", adminOnly, invoicesH.Delete)
		}
	}

	return r
}
