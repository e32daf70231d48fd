package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	catalogapp "github.com/swapmarket/backend/internal/application/catalog"
	identityapp "github.com/swapmarket/backend/internal/application/identity"
	marketapp "github.com/swapmarket/backend/internal/application/marketplace"
	"github.com/swapmarket/backend/internal/infrastructure/auth"
	"github.com/swapmarket/backend/internal/infrastructure/config"
	"github.com/swapmarket/backend/internal/infrastructure/event"
	"github.com/swapmarket/backend/internal/infrastructure/lock"
	"github.com/swapmarket/backend/internal/infrastructure/logger"
	"github.com/swapmarket/backend/internal/infrastructure/persistence"
	"github.com/swapmarket/backend/internal/infrastructure/storage"
	"github.com/swapmarket/backend/internal/infrastructure/telemetry"
	"github.com/swapmarket/backend/internal/interfaces/http/handler"
	"github.com/swapmarket/backend/internal/interfaces/http/middleware"
	"github.com/swapmarket/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	if err := run(cfg, baseLog); err != nil {
		baseLog.Error("Server terminated with error", zap.Error(err))
		_ = baseLog.Sync()
		os.Exit(1)
	}
	_ = baseLog.Sync()
}

func run(cfg *config.Config, baseLog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}

	// Log bridge first so every later component logs through it
	logProvider, err := telemetry.NewLoggerProvider(ctx, otelCfg, cfg.Telemetry.LogsEnabled, baseLog)
	if err != nil {
		return err
	}
	log := logProvider.Bridge(baseLog)

	log.Info("Starting swap marketplace",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		return err
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		return err
	}
	if cfg.Telemetry.ProfilingEnabled {
		tracerProvider.EnableSpanProfiles()
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
		defer cancel()
		if err := profiler.Stop(); err != nil {
			log.Warn("Error stopping profiler", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Error shutting down tracer provider", zap.Error(err))
		}
		if err := logProvider.Shutdown(shutdownCtx); err != nil {
			baseLog.Warn("Error shutting down logger provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = !cfg.IsProduction()
	if cfg.Database.SlowThreshold > 0 {
		dbTracing.SlowQueryThreshold = cfg.Database.SlowThreshold
	}
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		return err
	}
	log.Info("Database connected successfully")

	userRepo := persistence.NewGormUserRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	listingRepo := persistence.NewGormListingRepository(db.DB)
	txRepo := persistence.NewGormTransactionRepository(db.DB)
	offerRepo := persistence.NewGormSwapOfferRepository(db.DB)

	checks := map[string]handler.Pinger{"database": db}

	var locker marketapp.ListingLocker
	switch cfg.Coordinator.LockBackend {
	case config.LockBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn("Error closing redis client", zap.Error(err))
			}
		}()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		locker = lock.NewRedisLocker(rdb, lock.RedisOptions{
			Expiry:  cfg.Coordinator.LockExpiry,
			Timeout: cfg.Coordinator.LockTimeout,
		}, log)
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		log.Info("Using redis listing locks", zap.String("addr", cfg.Redis.Addr()))
	default:
		locker = lock.NewLocalLocker(cfg.Coordinator.LockTimeout)
	}

	metrics, err := telemetry.NewMarketplaceMetrics(meterProvider.Meter(telemetry.MeterName))
	if err != nil {
		return err
	}
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewMetricsEventHandler(metrics))
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	coordinator := marketapp.NewCoordinator(
		persistence.NewGormTransactionScope(db.DB),
		locker,
		bus,
		marketapp.CoordinatorConfig{
			MaxAttempts:  cfg.Coordinator.MaxAttempts,
			RetryBackoff: cfg.Coordinator.RetryBackoff,
		},
		log,
	)
	coordinator.SetObserver(metrics)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	listingService := marketapp.NewListingService(coordinator, listingRepo, itemRepo, userRepo, log)
	transactionService := marketapp.NewTransactionService(coordinator, listingRepo, txRepo, log)
	offerService := marketapp.NewOfferService(coordinator, listingRepo, offerRepo, itemRepo, log)

	var objectStorage catalogapp.ObjectStorage
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("Image bucket unavailable, uploads may fail", zap.Error(err))
		}
		objectStorage = s3
	}
	itemService := catalogapp.NewItemService(itemRepo, coordinator, objectStorage, cfg.Storage.PresignExpiration, log)

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.IsProduction()

	engine := router.New(router.Options{
		HTTP: cfg.HTTP,
		Telemetry: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Security:       security,
		TokenValidator: jwtService,
		Logger:         log,
	}, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Items:        handler.NewItemHandler(itemService),
		Listings:     handler.NewListingHandler(listingService, transactionService, offerService),
		Transactions: handler.NewTransactionHandler(transactionService),
		Offers:       handler.NewOfferHandler(offerService),
		Health:       handler.NewHealthHandler(telemetry.ServiceVersion, checks),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.HTTP.ShutdownTimeout > 0 {
		return cfg.HTTP.ShutdownTimeout
	}
	return 30 * time.Second
}
