package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appanalytics "github.com/salonos/backend/internal/application/analytics"
	"github.com/salonos/backend/internal/infrastructure/auth"
	"github.com/salonos/backend/internal/infrastructure/cache"
	"github.com/salonos/backend/internal/infrastructure/config"
	"github.com/salonos/backend/internal/infrastructure/logger"
	"github.com/salonos/backend/internal/infrastructure/persistence"
	"github.com/salonos/backend/internal/infrastructure/telemetry"
	"github.com/salonos/backend/internal/interfaces/http/handler"
	"github.com/salonos/backend/internal/interfaces/http/middleware"
	"github.com/salonos/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database with zap-backed GORM logger
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	// Initialize OpenTelemetry tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize OpenTelemetry metrics
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Register database query tracing
	if cfg.Telemetry.DBTraceEnabled {
		dbTraceCfg := telemetry.DefaultDBTracingConfig()
		dbTraceCfg.Enabled = true
		dbTracing := telemetry.NewDBTracingPlugin(dbTraceCfg, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Collect connection pool metrics
	var dbMetrics *telemetry.DBMetrics
	if meterProvider.IsEnabled() {
		dbMetrics, err = telemetry.NewDBMetrics(
			meterProvider.Meter("salon-backend/db"),
			telemetry.DBMetricsConfig{Enabled: true},
			log,
		)
		if err != nil {
			log.Warn("Failed to initialize database metrics", zap.Error(err))
		} else if sqlDB, err := db.DB.DB(); err == nil {
			dbMetrics.Start(context.Background(), sqlDB)
			defer dbMetrics.Stop()
		}
	}

	// Analytics wiring: snapshot repository, caches, dashboard service
	snapshotRepo := persistence.NewGormSnapshotRepository(db.DB)
	snapshotCache := cache.NewSnapshotCache(
		cache.WithSnapshotTTL(cfg.Analytics.SnapshotTTL),
		cache.WithSnapshotLogger(log),
	)
	defer snapshotCache.Stop()

	serviceOpts := make([]appanalytics.DashboardServiceOption, 0, 2)

	if cfg.Analytics.ResultCacheEnabled {
		resultCache, err := cache.NewRedisResultCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := resultCache.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		serviceOpts = append(serviceOpts, appanalytics.WithResultCache(resultCache, cfg.Analytics.ResultCacheTTL))
		log.Info("Result cache enabled",
			zap.String("redis_host", cfg.Redis.Host),
			zap.Duration("ttl", cfg.Analytics.ResultCacheTTL),
		)
	}

	if meterProvider.IsEnabled() {
		analyticsMetrics, err := telemetry.NewAnalyticsMetrics(meterProvider.Meter("salon-backend/analytics"), log)
		if err != nil {
			log.Warn("Failed to initialize analytics metrics", zap.Error(err))
		} else {
			serviceOpts = append(serviceOpts, appanalytics.WithMetrics(analyticsMetrics))
		}
	}

	dashboardService := appanalytics.NewDashboardService(snapshotRepo, snapshotCache, log, nil, serviceOpts...)

	// JWT service for access token validation
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiration, cfg.JWT.Issuer)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, applied in order
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Handlers and routes
	analyticsHandler := handler.NewAnalyticsHandler(dashboardService)
	systemHandler := handler.NewSystemHandler(db)

	engine.GET("/health", systemHandler.Health)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(analyticsHandler).
		Register(systemHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
