package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"eventexport/internal/analytics"
	"eventexport/internal/config"
	"eventexport/internal/constants"
	"eventexport/internal/export"
	"eventexport/internal/history"
	"eventexport/internal/logger"
	"eventexport/internal/plan"
	"eventexport/internal/workspace"
	"eventexport/pkg/bootstrap"
	"eventexport/pkg/health"
	"eventexport/pkg/metrics"
	"eventexport/pkg/middleware"
	"eventexport/pkg/migrations"
	"eventexport/pkg/ratelimit"
	"eventexport/pkg/tracing"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type App struct {
	config         *config.Config
	logger         logger.Logger
	base           *bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redis          *redis.Client
	mongoClient    *mongo.Client
	service        *export.Service
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config:      cfg,
		logger:      log,
		base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.config.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.base.InitBroker(ctx); err != nil {
		a.logger.WarnwCtx(ctx, "Failed to create event producer, export events will be disabled", "error", err)
	}

	if err := a.initRouter(ctx); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout(),
		WriteTimeout: a.config.Server.WriteTimeout(),
	}
	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	if a.config.Database.RunMigrations {
		version, err := migrations.UpPostgres(db)
		if err != nil {
			return err
		}
		a.logger.InfowCtx(ctx, "Database migrations applied", "version", version)
	}

	rdb, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		a.logger.WarnwCtx(ctx, "Redis connection failed, continuing without folder cache", "error", err)
	} else {
		a.redis = rdb
	}

	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		a.logger.WarnwCtx(ctx, "MongoDB connection failed, continuing without export history", "error", err)
	} else {
		a.mongoClient = mongoClient
	}
	return nil
}

func (a *App) initRouter(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceName))
	}

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.logger))

	metrics.RegisterExportMetrics()
	metrics.RegisterCircuitBreakerMetrics()

	workspaces := workspace.NewRepository(a.db)

	var folders export.FolderAccess = workspaces
	if a.redis != nil {
		folders = workspace.NewCachedFolderAccess(workspaces, a.redis, a.config.Export.FolderCacheTTL(), a.logger)
	}

	plans := plan.NewValidator(a.config.Plans.RetentionDays)
	config.WatchPlans(
		func(p config.PlansConfig) {
			plans.SetLimits(p.RetentionDays)
			metrics.IncPlanReload("success")
			a.logger.InfowCtx(ctx, "Plan retention reloaded", "tiers", len(p.RetentionDays))
		},
		func(err error) {
			metrics.IncPlanReload("error")
			a.logger.WarnwCtx(ctx, "Plan reload rejected, keeping previous limits", "error", err)
		},
	)

	source := analytics.NewCircuitBreakerSource(analytics.NewRepository(a.db), a.config.CircuitBreaker)

	opts := []export.ServiceOption{export.WithMaxRows(a.config.Export.MaxRows)}

	var historyRepo history.Repository
	if a.mongoClient != nil {
		dbName := a.config.Database.MongoDB.Database
		if dbName == "" {
			dbName = constants.DefaultMongoDBName
		}
		mongoDB := a.mongoClient.Database(dbName)
		if err := migrations.EnsureExportHistoryIndexes(ctx, mongoDB, constants.ExportHistoryCollection, constants.ExportHistoryRetentionTTL); err != nil {
			a.logger.WarnwCtx(ctx, "Failed to ensure export history indexes", "error", err)
		}
		historyRepo = history.NewRepository(mongoDB)
		opts = append(opts, export.WithHistory(historyRepo))
	}

	if a.base.Producer != nil && a.config.Broker.Kafka.ExportTopic != "" {
		metrics.RegisterBrokerMetrics()
		opts = append(opts, export.WithNotifier(export.NewEventProducer(a.base.Producer, a.config.Broker.Kafka.ExportTopic)))
		a.logger.InfowCtx(ctx, "Export event producer initialized", "topic", a.config.Broker.Kafka.ExportTopic)
	}

	gate := export.NewGate(workspaces, workspaces, folders, plans)
	a.service = export.NewService(gate, source, a.logger, opts...)

	var routeMiddleware []gin.HandlerFunc
	if rl := a.config.RateLimit; rl.Enabled {
		rateLimitConfig := ratelimit.DefaultConfig()
		rateLimitConfig.RPS = rl.RPS
		rateLimitConfig.Burst = rl.Burst
		if rl.CleanupInterval > 0 {
			rateLimitConfig.CleanupInterval = time.Duration(rl.CleanupInterval) * time.Second
		}
		if rl.MaxAge > 0 {
			rateLimitConfig.MaxAge = time.Duration(rl.MaxAge) * time.Second
		}
		routeMiddleware = append(routeMiddleware, ratelimit.RateLimitMiddleware(rateLimitConfig, export.WorkspaceKey))
		a.logger.InfowCtx(ctx, "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	handler := export.NewHandler(a.service, historyRepo, a.logger)
	handler.RegisterRoutes(router, export.AuthMiddleware(workspaces), routeMiddleware...)

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	if a.redis != nil {
		healthRegistry.RegisterOptional(health.NewRedisChecker(a.redis))
	}
	if a.mongoClient != nil {
		healthRegistry.RegisterOptional(health.NewMongoDBChecker(a.mongoClient))
	}
	if a.base.Producer != nil {
		healthRegistry.RegisterOptional(health.NewKafkaChecker(a.config.Broker.Kafka.Brokers))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(ctx, "Server listening", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		return a.Shutdown(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	// Exports already answered may still be writing history or publishing.
	if a.service != nil {
		a.service.Wait()
	}

	errs = append(errs, a.base.ShutdownBroker()...)

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	errs = append(errs, a.dbConnector.ShutdownDatabases(shutdownCtx, a.redis, a.db, a.mongoClient)...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
