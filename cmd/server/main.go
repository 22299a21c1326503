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

	appfeedrule "github.com/channelsync/backend/internal/application/feedrule"
	appintegration "github.com/channelsync/backend/internal/application/integration"
	appsync "github.com/channelsync/backend/internal/application/sync"
	"github.com/channelsync/backend/internal/application/webhook"
	"github.com/channelsync/backend/internal/infrastructure/cache"
	"github.com/channelsync/backend/internal/infrastructure/config"
	"github.com/channelsync/backend/internal/infrastructure/logger"
	"github.com/channelsync/backend/internal/infrastructure/persistence"
	"github.com/channelsync/backend/internal/infrastructure/storefront"
	"github.com/channelsync/backend/internal/interfaces/http/handler"
	"github.com/channelsync/backend/internal/interfaces/http/middleware"
	"github.com/channelsync/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
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

	log.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database with GORM logging routed through zap
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
	)

	// Webhook delivery deduplication: Redis shares the seen-set across
	// replicas; when Redis is unreachable fall back to a per-process store
	// rather than refusing to start.
	var dedup webhook.DeliveryDeduplicator
	redisDedup, err := cache.NewRedisDeliveryDeduplicator(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory webhook deduplication", zap.Error(err))
		memDedup := cache.NewInMemoryDeliveryDeduplicator()
		defer memDedup.Close()
		dedup = memDedup
	} else {
		defer func() {
			if err := redisDedup.Close(); err != nil {
				log.Error("Failed to close Redis client", zap.Error(err))
			}
		}()
		dedup = redisDedup
		log.Info("Redis connected",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	}

	// Initialize repositories
	integrationRepo := persistence.NewGormIntegrationRepository(db.DB)
	configurationRepo := persistence.NewGormSyncConfigurationRepository(db.DB)
	queueRepo := persistence.NewGormSyncQueueRepository(db.DB)
	linkRepo := persistence.NewGormProductStoreLinkRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)
	webhookEventRepo := persistence.NewGormWebhookEventRepository(db.DB)
	observationRepo := persistence.NewGormStockObservationRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	feedRuleRepo := persistence.NewGormFeedRuleRepository(db.DB)
	ruleLogRepo := persistence.NewGormRuleExecutionLogRepository(db.DB)

	// Storefront connectors. Credentials are resolved at call time through
	// the resolver so they never live on the integration row.
	credentials := storefront.NewStaticCredentialResolver()
	registry := storefront.NewRegistry()
	registry.Register(storefront.NewShopifyAdapter(credentials))
	registry.Register(storefront.NewWooCommerceAdapter(credentials))

	// Webhook gateway and topic handlers
	orderEvents := webhook.NewOrderEventHandler(orderRepo, queueRepo, log)
	productEvents := webhook.NewProductEventHandler(linkRepo, log)
	inventoryEvents := webhook.NewInventoryEventHandler(observationRepo, log)
	gateway := webhook.NewGatewayService(
		integrationRepo,
		configurationRepo,
		webhookEventRepo,
		dedup,
		orderEvents,
		productEvents,
		inventoryEvents,
		log,
	)
	gateway.SetDedupTTL(cfg.Webhook.DedupTTL)

	// Sync services
	moduleRunner := appsync.NewModuleRunner(
		registry,
		integrationRepo,
		linkRepo,
		productRepo,
		orderRepo,
		customerRepo,
		syncLogRepo,
		log,
	)
	fullSyncService := appsync.NewFullSyncService(
		integrationRepo,
		configurationRepo,
		moduleRunner,
		cfg.FullSync.MaxConcurrency,
		log,
	)
	orchestrator := appsync.NewOrchestrator(
		queueRepo,
		integrationRepo,
		configurationRepo,
		moduleRunner,
		appsync.OrchestratorConfig{
			BatchSize:        cfg.Queue.BatchSize,
			PollInterval:     cfg.Queue.PollInterval,
			RetryBackoffBase: cfg.Queue.RetryBackoffBase,
			ScheduleInterval: cfg.Queue.ScheduleInterval,
		},
		log,
	)
	syncService := appsync.NewService(queueRepo, integrationRepo, syncLogRepo, fullSyncService, log)
	resolutionService := appsync.NewResolutionService(linkRepo, configurationRepo, productRepo, log)

	// Integration and feed rule services
	integrationService := appintegration.NewService(
		integrationRepo,
		configurationRepo,
		linkRepo,
		productRepo,
		registry,
		log,
	)
	feedRuleService := appfeedrule.NewService(feedRuleRepo, ruleLogRepo, productRepo, log)

	// Start the queue orchestrator unless disabled (single-shot tooling,
	// or deployments that drain via POST /sync/queue/process only)
	if cfg.Queue.ProcessorEnabled {
		if err := orchestrator.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync orchestrator", zap.Error(err))
		}
		log.Info("Sync orchestrator started",
			zap.Int("batch_size", cfg.Queue.BatchSize),
			zap.Duration("poll_interval", cfg.Queue.PollInterval),
		)
	}

	// Initialize HTTP handlers
	webhookHandler := handler.NewWebhookHandler(gateway, cfg.Webhook.MaxBodySize)
	integrationHandler := handler.NewIntegrationHandler(integrationService)
	syncHandler := handler.NewSyncHandler(syncService, resolutionService, orchestrator)
	feedRuleHandler := handler.NewFeedRuleHandler(feedRuleService)
	systemHandler := handler.NewSystemHandler(db)

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

	// Middleware stack, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Liveness endpoint outside API versioning for load balancers
	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"time":   time.Now().Format(time.RFC3339),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(webhookHandler)
	r.Register(integrationHandler)
	r.Register(syncHandler)
	r.Register(feedRuleHandler)
	r.Register(systemHandler)
	r.Setup()

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
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if cfg.Queue.ProcessorEnabled {
		if err := orchestrator.Stop(ctx); err != nil {
			log.Error("Sync orchestrator shutdown timed out", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
