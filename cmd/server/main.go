package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/assistec/backend/internal/application/catalog"
	tradeapp "github.com/assistec/backend/internal/application/trade"
	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/assistec/backend/internal/infrastructure/auth"
	"github.com/assistec/backend/internal/infrastructure/cache"
	"github.com/assistec/backend/internal/infrastructure/config"
	"github.com/assistec/backend/internal/infrastructure/logger"
	"github.com/assistec/backend/internal/infrastructure/migration"
	"github.com/assistec/backend/internal/infrastructure/persistence"
	"github.com/assistec/backend/internal/infrastructure/persistence/models"
	"github.com/assistec/backend/internal/infrastructure/telemetry"
	"github.com/assistec/backend/internal/interfaces/http/handler"
	"github.com/assistec/backend/internal/interfaces/http/router"
	"github.com/assistec/backend/migrations"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Version is stamped at build time with -ldflags "-X main.Version=..."
var Version = "dev"

//	@title			Assistec Order Engine API
//	@version		1.0
//	@description	Budgets, service orders and sales for a repair shop, with stock and receivables kept consistent.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Assistec order engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", Version),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	if cfg.Database.AutoMigrate {
		if err := migrateSchema(cfg, db, log); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
	}

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem(db.Driver),
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if _, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DBMetricsConfig{
		Enabled:            meterProvider.IsEnabled(),
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Trade.SequenceBackend == "redis" || (cfg.Idempotency.Enabled && cfg.Idempotency.Backend == "redis") {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			if cfg.Trade.SequenceBackend == "redis" {
				log.Fatal("Redis is required for redis-backed document numbers", zap.Error(err))
			}
			log.Warn("Redis unavailable", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
			redisClient = nil
		} else {
			defer func() {
				_ = redisClient.Close()
			}()
		}
	}

	settings, err := tradeSettings(cfg.Trade)
	if err != nil {
		log.Fatal("Invalid trade configuration", zap.Error(err))
	}

	starts := persistence.SequenceStarts{
		trade.SequenceBudget:       cfg.Trade.BudgetNumberSeed,
		trade.SequenceServiceOrder: cfg.Trade.OrderNumberSeed,
		trade.SequenceSale:         cfg.Trade.SaleNumberSeed,
	}
	scopeOpts := []persistence.ScopeOption{persistence.WithSequenceStarts(starts)}
	if cfg.Trade.SequenceBackend == "redis" {
		floor := persistence.NewGormSequenceGenerator(db.DB, starts)
		scopeOpts = append(scopeOpts, persistence.WithSequenceGenerator(
			cache.NewRedisSequenceGenerator(redisClient, floor, log),
		))
		log.Info("Document numbers allocated from Redis; rolled back conversions leave gaps")
	}
	txScope := persistence.NewGormTransactionScope(db.DB, scopeOpts...)

	var metrics tradeapp.Metrics = tradeapp.NoopMetrics()
	if meterProvider.IsEnabled() {
		engineMetrics, err := telemetry.NewEngineMetrics(meterProvider.Meter("assistec/trade"))
		if err != nil {
			log.Fatal("Failed to create engine metrics", zap.Error(err))
		}
		metrics = engineMetrics
	}

	aggregator := tradeapp.NewAggregator(log, metrics)
	ledger := tradeapp.NewStockLedger(settings.AllowNegativeStock, log, metrics)
	poster := tradeapp.NewFinancialPoster(log, metrics)

	budgetService := tradeapp.NewBudgetService(txScope, aggregator, settings, log)
	serviceOrderService := tradeapp.NewServiceOrderService(txScope, aggregator, poster, settings, log)
	saleService := tradeapp.NewSaleService(txScope, aggregator, ledger, poster, settings, log)
	lineItemService := tradeapp.NewLineItemService(txScope, aggregator, log)
	financialRecordService := tradeapp.NewFinancialRecordService(txScope, poster, settings, log)
	conversionService := tradeapp.NewConversionService(txScope, aggregator, ledger, poster, settings, log, metrics)
	productService := catalogapp.NewProductService(
		persistence.NewGormProductRepository(db.DB),
		persistence.NewGormServiceRepository(db.DB),
		log,
	)

	var idempotencyStore shared.IdempotencyStore
	if cfg.Idempotency.Enabled {
		idempotencyStore, err = cache.NewIdempotencyStoreFactory(cfg.Idempotency,
			cache.WithLogger(log),
			cache.WithRedisClient(redisClient),
			cache.WithInMemoryFallback(!cfg.IsProduction()),
		).CreateStore()
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		defer func() {
			_ = idempotencyStore.Close()
		}()
	}

	checks := map[string]handler.Pinger{
		"database": handler.PingerFunc(func(context.Context) error { return db.Ping() }),
	}
	if redisClient != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	var jwtService *auth.JWTService
	if cfg.JWT.Secret != "" {
		jwtService = auth.NewJWTService(cfg.JWT)
	} else if cfg.JWT.Required {
		log.Fatal("jwt.required is set but jwt.secret is empty")
	} else {
		log.Warn("JWT disabled; the acting user is read from the X-User-ID header")
	}

	engine := router.NewEngine(router.EngineOptions{
		Logger:           log,
		HTTP:             cfg.HTTP,
		JWTService:       jwtService,
		JWTRequired:      cfg.JWT.Required,
		TracingEnabled:   tracerProvider.IsEnabled(),
		ServiceName:      cfg.Telemetry.ServiceName,
		MeterProvider:    meterProvider,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.Idempotency.TTL,
	}, router.Handlers{
		Budgets:          handler.NewBudgetHandler(budgetService, conversionService),
		ServiceOrders:    handler.NewServiceOrderHandler(serviceOrderService),
		Sales:            handler.NewSaleHandler(saleService),
		LineItems:        handler.NewLineItemHandler(lineItemService),
		FinancialRecords: handler.NewFinancialRecordHandler(financialRecordService),
		Catalog:          handler.NewProductHandler(productService),
		System:           handler.NewSystemHandler(Version, checks),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateSchema applies the embedded SQL migrations on PostgreSQL.
// SQLite has no golang-migrate driver here, so it gets gorm's AutoMigrate.
func migrateSchema(cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if db.Driver == "sqlite" {
		log.Info("Auto-migrating SQLite schema")
		return db.DB.AutoMigrate(models.AllModels()...)
	}
	return migration.UpFromDSN(cfg.Database.DSN(), migration.EmbeddedSource(migrations.FS), log)
}

func tradeSettings(cfg config.TradeConfig) (tradeapp.Settings, error) {
	settings := tradeapp.DefaultSettings()
	settings.AllowNegativeStock = cfg.AllowNegativeStock

	method, ok := finance.ParsePaymentMethod(cfg.DefaultPaymentMethod, finance.PaymentMethodCash)
	if !ok {
		return settings, fmt.Errorf("trade.default_payment_method %q is not a known payment method", cfg.DefaultPaymentMethod)
	}
	settings.DefaultPaymentMethod = method
	settings.SaleNumber = trade.NumberFormat{Prefix: cfg.SaleNumberPrefix, Width: cfg.SaleNumberWidth}
	return settings, nil
}

func dbSystem(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgresql"
}
