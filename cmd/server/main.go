package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	inventoryapp "github.com/cafe/backend/internal/application/inventory"
	numberingapp "github.com/cafe/backend/internal/application/numbering"
	procurementapp "github.com/cafe/backend/internal/application/procurement"
	"github.com/cafe/backend/internal/domain/numbering"
	"github.com/cafe/backend/internal/infrastructure/cache"
	"github.com/cafe/backend/internal/infrastructure/config"
	"github.com/cafe/backend/internal/infrastructure/logger"
	"github.com/cafe/backend/internal/infrastructure/persistence"
	"github.com/cafe/backend/internal/infrastructure/sequence"
	"github.com/cafe/backend/internal/infrastructure/telemetry"
	"github.com/cafe/backend/internal/interfaces/http/handler"
	"github.com/cafe/backend/internal/interfaces/http/middleware"
	"github.com/cafe/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log, err := logger.NewForEnvironment(cfg.App.Env, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdowns := make([]func(context.Context) error, 0, 4)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		for i := len(shutdowns) - 1; i >= 0; i-- {
			if err := shutdowns[i](sctx); err != nil {
				log.Warn("Shutdown step failed", zap.Error(err))
			}
		}
	}()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("tracer provider: %w", err)
	}
	shutdowns = append(shutdowns, tp.Shutdown)

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("meter provider: %w", err)
	}
	shutdowns = append(shutdowns, mp.Shutdown)

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("logger provider: %w", err)
	}
	shutdowns = append(shutdowns, lp.Shutdown)

	if lp.IsEnabled() {
		level, _ := zapcore.ParseLevel(cfg.Log.Level)
		log = telemetry.NewBridgedLogger(log, telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: lp,
			Level:          level,
		}))
	}

	log.Info("Starting cafe backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("numbering_backend", cfg.Numbering.Backend),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	shutdowns = append(shutdowns, func(context.Context) error { return db.Close() })
	log.Info("Database connected successfully")

	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log).RegisterOtelGorm(db.DB); err != nil {
		return fmt.Errorf("db tracing: %w", err)
	}

	meter := mp.Meter("github.com/cafe/backend")

	dbMetrics, err := telemetry.NewDBMetrics(meter, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.MetricsEnabled,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
		PoolStatsInterval:  cfg.Telemetry.PoolStatsInterval,
	}, log)
	if err != nil {
		return fmt.Errorf("db metrics: %w", err)
	}
	if err := dbMetrics.Register(db.DB); err != nil {
		return fmt.Errorf("db metrics: %w", err)
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		dbMetrics.StartPoolStatsCollection(ctx, sqlDB)
	}
	defer dbMetrics.Stop()

	metrics, err := telemetry.NewProcurementMetrics(telemetry.ProcurementMetricsConfig{
		Meter:    meter,
		Logger:   log,
		LowStock: persistence.NewGormIngredientRepository(db.DB),
	})
	if err != nil {
		return fmt.Errorf("procurement metrics: %w", err)
	}
	if mp.IsEnabled() {
		metrics.StartLowStockCollection(ctx, cfg.Telemetry.LowStockInterval)
	}
	defer metrics.Stop()

	checks := []handler.HealthCheck{{Name: "database", Check: db.Ping}}

	var redisClient *redis.Client
	if cfg.UsesRedis() {
		redisClient, err = sequence.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		shutdowns = append(shutdowns, func(context.Context) error { return redisClient.Close() })
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	sequences := persistence.NewGormDocumentSequenceRepository(db.DB)
	var sequencer numbering.Sequencer = sequences
	if cfg.Numbering.Backend == config.NumberingBackendRedis {
		sequencer = sequence.NewRedisSequencer(redisClient, sequence.NewRedisLocker(redisClient), sequences, sequence.Options{
			KeyPrefix:   cfg.Numbering.KeyPrefix,
			KeyTTL:      cfg.Numbering.KeyTTL,
			SeedLockTTL: cfg.Numbering.SeedLockTTL,
		}, log)
	}

	var idempotency cache.IdempotencyStore
	if cfg.Idempotency.Enabled {
		if cfg.Idempotency.Backend == config.IdempotencyBackendRedis {
			idempotency = cache.NewRedisIdempotencyStore(redisClient, cfg.Idempotency.KeyPrefix)
		} else {
			idempotency = cache.NewInMemoryIdempotencyStore(0)
		}
		shutdowns = append(shutdowns, func(context.Context) error { return idempotency.Close() })
	}

	numbers := numberingapp.NewAllocator(sequencer, log,
		numberingapp.WithMaxAttempts(cfg.Numbering.MaxAttempts),
		numberingapp.WithCollisionObserver(metrics),
	)
	scope := persistence.NewGormTransactionScope(db.DB)

	intendService := procurementapp.NewIntendService(scope, numbers, log)
	orderService := procurementapp.NewPurchaseOrderService(scope, numbers, log)
	orderService.SetMetrics(metrics)
	receiptService := procurementapp.NewGoodsReceiptService(scope, numbers, log)
	receiptService.SetMetrics(metrics)
	paymentService := procurementapp.NewPaymentService(scope, numbers, log)
	paymentService.SetMetrics(metrics)
	adjustmentService := inventoryapp.NewStockAdjustmentService(scope, numbers, log)
	adjustmentService.SetMetrics(metrics)
	adjustmentService.SetStrictSnapshot(cfg.Adjustment.StrictSnapshot)
	ingredientService := inventoryapp.NewIngredientQueryService(scope)

	mode := gin.DebugMode
	if cfg.IsProduction() {
		mode = gin.ReleaseMode
	}
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Mode:           mode,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS:           cors,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tp.IsEnabled(),
		},
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.Idempotency.TTL,
	}, log)
	if err != nil {
		return err
	}
	router.Mount(engine, router.Handlers{
		Intends:        handler.NewIntendHandler(intendService),
		PurchaseOrders: handler.NewPurchaseOrderHandler(orderService, receiptService, paymentService),
		Inventory:      handler.NewInventoryHandler(adjustmentService, ingredientService),
		Health:         handler.NewHealthHandler(cfg.App.Version, checks...),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited gracefully")
	return nil
}
