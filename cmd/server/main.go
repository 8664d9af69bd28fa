package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	inventoryapp "github.com/thaipharm/backend/internal/application/inventory"
	oemapp "github.com/thaipharm/backend/internal/application/oem"
	salesapp "github.com/thaipharm/backend/internal/application/sales"
	transferapp "github.com/thaipharm/backend/internal/application/transfer"
	"github.com/thaipharm/backend/internal/domain/catalog"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/infrastructure/auth"
	"github.com/thaipharm/backend/internal/infrastructure/cache"
	"github.com/thaipharm/backend/internal/infrastructure/config"
	"github.com/thaipharm/backend/internal/infrastructure/event"
	"github.com/thaipharm/backend/internal/infrastructure/logger"
	"github.com/thaipharm/backend/internal/infrastructure/persistence"
	"github.com/thaipharm/backend/internal/infrastructure/scheduler"
	"github.com/thaipharm/backend/internal/infrastructure/telemetry"
	"github.com/thaipharm/backend/internal/interfaces/http/handler"
	"github.com/thaipharm/backend/internal/interfaces/http/middleware"
	"github.com/thaipharm/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Pharmacy Inventory API
//	@version		1.0
//	@description	Multi-branch pharmacy stock ledger: batches, VAT and non-VAT inventory, sales, transfers and OEM receiving.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// OpenTelemetry: traces, metrics and logs share one collector
	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	metricsCfg := otelCfg
	metricsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled
	meterProvider, err := telemetry.NewMeterProvider(ctx, metricsCfg, cfg.Telemetry.MetricsInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.Enabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting pharmacy backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Telemetry.DBSlowQueryThresh)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterGormTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:     cfg.Database.DBName,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
	}); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis backs checkout idempotency, the product cache and token revocation.
	// Without it each falls back to an in-process implementation.
	idempotencyStore, redisClient, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Repositories
	scope := persistence.NewGormTransactionScope(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	lineRepo := persistence.NewGormInventoryLineRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	transferRepo := persistence.NewGormStockTransferRepository(db.DB)
	orderRepo := persistence.NewGormOemOrderRepository(db.DB)
	receivingRepo := persistence.NewGormGoodsReceivingRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	products := newProductReader(cfg, persistence.NewGormProductRepository(db.DB), redisClient, log)

	// Application services
	inventoryService := inventoryapp.NewInventoryService(scope, batchRepo, lineRepo, movementRepo, products, branchRepo,
		inventoryapp.Config{
			NonVatMarkup: cfg.Inventory.NonVatMarkup,
			SellExpired:  cfg.Inventory.SellExpired,
		}, log)
	expiryService := inventoryapp.NewBatchExpiryService(batchRepo, nil, log)

	idempotencyCfg := shared.DefaultIdempotencyConfig()
	if cfg.Inventory.IdempotencyTTL > 0 {
		idempotencyCfg.TTL = cfg.Inventory.IdempotencyTTL
	}
	saleService := salesapp.NewSaleService(scope.Sales(), saleRepo, lineRepo, products, branchRepo,
		salesapp.Config{
			SellExpired: cfg.Inventory.SellExpired,
			Idempotency: idempotencyCfg,
		}, log)
	saleService.SetIdempotencyStore(idempotencyStore)

	transferService := transferapp.NewTransferService(scope.Transfers(), transferRepo, lineRepo, products, branchRepo, log)
	oemService := oemapp.NewOemService(scope.Oem(), orderRepo, receivingRepo, supplierRepo, branchRepo, products,
		cfg.Inventory.NonVatMarkup, log)

	// Event bus and handlers
	var busOpts []event.BusOption
	if cfg.Event.AsyncWorkers > 0 {
		busOpts = append(busOpts, event.WithAsyncWorkers(cfg.Event.AsyncWorkers, cfg.Event.QueueSize))
	}
	eventBus := event.NewInMemoryEventBus(log, busOpts...)

	businessMetrics, err := telemetry.NewBusinessMetrics(meterProvider.Meter(cfg.Telemetry.ServiceName))
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	saleService.SetMetrics(businessMetrics)
	eventBus.Subscribe(businessMetrics)

	// A replayed stock event must not raise a second reorder alert
	reorderAlerts := inventoryapp.NewReorderAlertHandler(log).
		WithNotifier(inventoryapp.NewLoggingReorderNotifier(log))
	eventBus.Subscribe(event.NewIdempotentHandler(reorderAlerts, idempotencyStore, idempotencyCfg, log))

	inventoryService.SetEventPublisher(eventBus)
	expiryService.SetEventBus(eventBus)
	saleService.SetEventPublisher(eventBus)
	transferService.SetEventPublisher(eventBus)
	oemService.SetEventPublisher(eventBus)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	log.Info("Event bus initialized with handlers")

	// Nightly batch expiry
	var (
		jobScheduler  *scheduler.Scheduler
		expiryTrigger *scheduler.DailyTrigger
	)
	if cfg.Scheduler.Enabled {
		jobScheduler, expiryTrigger, err = startExpiryJob(ctx, cfg.Scheduler, expiryService, log)
		if err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup custom validator
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	httpMetrics, err := middleware.HTTPMetrics(meterProvider.Meter(cfg.Telemetry.ServiceName))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	engine.Use(httpMetrics)

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health checks stay outside the API group: no auth, no timeout
	checks := map[string]handler.HealthCheck{"database": db.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	healthHandler := handler.NewHealthHandler(cfg.App.Name, version, checks)
	engine.GET("/health", healthHandler.Live)
	engine.GET("/ready", healthHandler.Ready)

	// Bearer tokens are issued by the identity service; this service only verifies them
	var revocations auth.RevocationList = auth.NewInMemoryRevocationList()
	if redisClient != nil {
		revocations = auth.NewRedisRevocationList(redisClient)
	}

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(
			middleware.Timeout(cfg.HTTP.WriteTimeout),
			middleware.Authenticate(middleware.AuthConfig{
				Tokens:      auth.NewJWTService(cfg.JWT),
				Revocations: revocations,
				Required:    cfg.JWT.Required,
				Logger:      log,
			}),
			middleware.SpanAttributes(),
			middleware.Profiling(),
		),
	)
	r.Register(handler.NewInventoryHandler(inventoryService, expiryService).Routes()).
		Register(handler.NewSaleHandler(saleService).Routes()).
		Register(handler.NewTransferHandler(transferService).Routes()).
		Register(handler.NewOemHandler(oemService).Routes()).
		Register(router.NewDomainGroup("system", "/system").GET("/info", healthHandler.Info))
	r.Setup()
	log.Info("Routes registered", zap.Strings("routes", r.Routes()))

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

	// Graceful shutdown
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if expiryTrigger != nil {
		if err := expiryTrigger.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping expiry trigger", zap.Error(err))
		}
	}
	if jobScheduler != nil {
		if err := jobScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing traces", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing logs", zap.Error(err))
	}

	log.Info("Server exited")
}

// newProductReader puts the catalog behind a read-through cache. Redis is
// used when connected; otherwise entries live in this process.
func newProductReader(cfg *config.Config, products catalog.ProductReader, client *redis.Client, log *zap.Logger) catalog.ProductReader {
	if cfg.Inventory.ProductCacheTTL <= 0 {
		return products
	}
	var store cache.ProductCache = cache.NewInMemoryProductCache()
	if client != nil {
		store = cache.NewRedisProductCache(client, log)
	}
	return cache.NewCachedProductReader(products, store, cfg.Inventory.ProductCacheTTL, log)
}

// startExpiryJob runs the batch expiry sweep once a day at cfg.ExpiryCheckTime
func startExpiryJob(
	ctx context.Context,
	cfg config.SchedulerConfig,
	expiry *inventoryapp.BatchExpiryService,
	log *zap.Logger,
) (*scheduler.Scheduler, *scheduler.DailyTrigger, error) {
	triggerCfg, err := scheduler.NewDailyTriggerConfig(cfg.ExpiryCheckTime)
	if err != nil {
		return nil, nil, err
	}

	schedCfg := scheduler.DefaultSchedulerConfig()
	if cfg.JobTimeout > 0 {
		schedCfg.JobTimeout = cfg.JobTimeout
	}
	schedCfg.RetryAttempts = cfg.RetryAttempts
	if cfg.RetryDelay > 0 {
		schedCfg.RetryDelay = cfg.RetryDelay
	}

	jobs := scheduler.JobFuncs{
		scheduler.JobBatchExpiry: func(ctx context.Context) error {
			_, err := expiry.DeactivateExpired(ctx)
			return err
		},
	}
	s := scheduler.NewScheduler(schedCfg, jobs, log)
	if err := s.Start(ctx); err != nil {
		return nil, nil, err
	}

	trigger := scheduler.NewDailyTrigger(triggerCfg, s, log, scheduler.JobBatchExpiry)
	if err := trigger.Start(ctx); err != nil {
		_ = s.Stop(context.Background())
		return nil, nil, err
	}
	log.Info("Batch expiry job scheduled",
		zap.String("at", cfg.ExpiryCheckTime),
		zap.Duration("timeout", schedCfg.JobTimeout),
	)
	return s, trigger, nil
}
