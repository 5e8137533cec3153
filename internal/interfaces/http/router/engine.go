package router

import (
	"time"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/infrastructure/auth"
	"github.com/assistec/backend/internal/infrastructure/config"
	"github.com/assistec/backend/internal/infrastructure/logger"
	"github.com/assistec/backend/internal/infrastructure/telemetry"
	"github.com/assistec/backend/internal/interfaces/http/handler"
	"github.com/assistec/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers of the order engine
type Handlers struct {
	Budgets          *handler.BudgetHandler
	ServiceOrders    *handler.ServiceOrderHandler
	Sales            *handler.SaleHandler
	LineItems        *handler.LineItemHandler
	FinancialRecords *handler.FinancialRecordHandler
	Catalog          *handler.ProductHandler
	System           *handler.SystemHandler
}

// EngineOptions configures the middleware chain of the HTTP engine
type EngineOptions struct {
	Logger *zap.Logger
	HTTP   config.HTTPConfig

	// JWTService validates bearer tokens; nil disables JWT and the
	// X-User-ID header becomes the only source of the actor
	JWTService  *auth.JWTService
	JWTRequired bool

	TracingEnabled bool
	ServiceName    string
	MeterProvider  *telemetry.MeterProvider

	// IdempotencyStore enables Idempotency-Key replay on the money-moving routes
	IdempotencyStore shared.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewEngine builds the gin engine with the full middleware chain and every
// route of the order engine under /api/v1
func NewEngine(opts EngineOptions, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
			_ = engine.SetTrustedProxies(nil)
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			Enabled:     opts.TracingEnabled,
			ServiceName: opts.ServiceName,
		}),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: opts.MeterProvider,
			Enabled:       opts.MeterProvider != nil && opts.MeterProvider.IsEnabled(),
		}),
		middleware.CORSWithConfig(cors),
		middleware.Secure(),
	)
	if opts.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))
	}
	if opts.JWTService != nil {
		jwtCfg := middleware.DefaultJWTConfig(opts.JWTService)
		jwtCfg.Optional = !opts.JWTRequired
		jwtCfg.Logger = log
		engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))
	}
	if opts.HTTP.RateLimit > 0 {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(opts.HTTP.RateLimit, opts.HTTP.RateLimitWindow)))
	}
	engine.Use(middleware.TracingAttributeInjector())

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Store:  opts.IdempotencyStore,
		TTL:    opts.IdempotencyTTL,
		Logger: log,
	})

	r := NewRouter(engine)
	for _, group := range EngineRoutes(h, idempotent) {
		r.Register(group)
	}
	r.Setup()

	log.Debug("HTTP routes registered", zap.Strings("routes", r.Routes()))
	return engine
}

// EngineRoutes declares the domain route groups of the order engine.
// idempotent wraps the routes that move stock or money.
func EngineRoutes(h Handlers, idempotent gin.HandlerFunc) []*DomainGroup {
	var groups []*DomainGroup

	if h.Budgets != nil {
		budgets := NewDomainGroup("budgets", "/budgets")
		budgets.POST("", h.Budgets.Create).
			GET("", h.Budgets.List).
			GET("/:id", h.Budgets.GetByID).
			PATCH("/:id/status", h.Budgets.ChangeStatus).
			POST("/:id/convert-to-order", idempotent, h.Budgets.ConvertToOrder).
			POST("/:id/convert-to-sale", idempotent, h.Budgets.ConvertToSale)
		if h.LineItems != nil {
			budgets.POST("/:id/items", h.LineItems.AddToBudget)
		}
		groups = append(groups, budgets)
	}

	if h.ServiceOrders != nil {
		orders := NewDomainGroup("service-orders", "/service-orders")
		orders.POST("", h.ServiceOrders.Create).
			GET("/:id", h.ServiceOrders.GetByID).
			PUT("/:id", h.ServiceOrders.Update).
			PATCH("/:id/status", h.ServiceOrders.UpdateStatus)
		if h.LineItems != nil {
			orders.POST("/:id/items", h.LineItems.AddToServiceOrder)
		}
		groups = append(groups, orders)
	}

	if h.LineItems != nil {
		groups = append(groups, NewDomainGroup("items", "/items").
			PATCH("/:id", h.LineItems.Update).
			DELETE("/:id", h.LineItems.Remove))
	}

	if h.Sales != nil {
		groups = append(groups, NewDomainGroup("sales", "/sales").
			POST("", idempotent, h.Sales.Create).
			GET("/:id", h.Sales.GetByID))
	}

	if h.FinancialRecords != nil {
		groups = append(groups, NewDomainGroup("financial-records", "/financial-records").
			POST("", h.FinancialRecords.Post).
			GET("", h.FinancialRecords.GetBySource))
	}

	if h.Catalog != nil {
		groups = append(groups,
			NewDomainGroup("products", "/products").
				POST("", h.Catalog.Create).
				GET("/:id", h.Catalog.GetByID).
				PUT("/:id", h.Catalog.Update),
			NewDomainGroup("services", "/services").
				POST("", h.Catalog.CreateService).
				GET("/:id", h.Catalog.GetService),
		)
	}

	if h.System != nil {
		groups = append(groups,
			NewDomainGroup("health", "/health").GET("", h.System.Health),
			NewDomainGroup("system", "/system").GET("/info", h.System.GetSystemInfo),
		)
	}

	return groups
}
