package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	auditapp "github.com/kontor/backend/internal/application/audit"
	billingapp "github.com/kontor/backend/internal/application/billing"
	budgetapp "github.com/kontor/backend/internal/application/budget"
	partnerapp "github.com/kontor/backend/internal/application/partner"
	reportapp "github.com/kontor/backend/internal/application/report"
	"github.com/kontor/backend/internal/infrastructure/audit"
	"github.com/kontor/backend/internal/infrastructure/cache"
	"github.com/kontor/backend/internal/infrastructure/config"
	"github.com/kontor/backend/internal/infrastructure/event"
	"github.com/kontor/backend/internal/infrastructure/logger"
	"github.com/kontor/backend/internal/infrastructure/persistence"
	"github.com/kontor/backend/internal/infrastructure/storage"
	"github.com/kontor/backend/internal/infrastructure/telemetry"
	"github.com/kontor/backend/internal/interfaces/http/handler"
	"github.com/kontor/backend/internal/interfaces/http/middleware"
	"github.com/kontor/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting kontor backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	var tracerProvider *telemetry.TracerProvider
	if cfg.Telemetry.Enabled {
		tracerProvider, err = telemetry.NewTracerProvider(context.Background(), telemetry.Config{
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
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(ctx); err != nil {
				log.Warn("Failed to shut down tracer provider", zap.Error(err))
			}
		}()

		dbTracingCfg := telemetry.DefaultDBTracingConfig()
		dbTracingCfg.Enabled = true
		dbTracing := telemetry.NewDBTracingPlugin(dbTracingCfg, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Repositories
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	billingPlanRepo := persistence.NewGormBillingPlanRepository(db.DB)
	budgetPlanRepo := persistence.NewGormBudgetPlanRepository(db.DB)
	actualCostRepo := persistence.NewGormActualCostRepository(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Report cache, Redis when configured, in-process otherwise
	var reportCache reportapp.ReportCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisReportCache(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		reportCache = redisCache
		log.Info("Report cache using Redis", zap.String("addr", cfg.Redis.RedisAddr()))
	} else {
		reportCache = cache.NewInMemoryReportCache()
		log.Info("Report cache using in-process store")
	}

	// Invoice document storage, S3 when configured, in-process otherwise
	var documentStore billingapp.DocumentStore
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3DocumentStore(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize document storage", zap.Error(err))
		}
		documentStore = s3Store
		log.Info("Invoice document storage using S3", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		documentStore = storage.NewMemoryDocumentStore()
		log.Info("Invoice document storage using in-process store")
	}

	// Application services
	organizationService := partnerapp.NewOrganizationService(orgRepo, eventBus)
	orderService := billingapp.NewOrderService(orderRepo, orgRepo, eventBus, log)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, orderRepo, billingPlanRepo, documentStore, eventBus, log)
	billingPlanService := billingapp.NewBillingPlanService(billingPlanRepo, orderRepo)
	budgetService := budgetapp.NewBudgetService(budgetPlanRepo, actualCostRepo, eventBus, log)
	reportService := reportapp.NewBudgetReportService(budgetPlanRepo, actualCostRepo, reportCache, log)

	// Event handlers
	auditRecorder := auditapp.NewRecorder(audit.NewGormSink(db.DB), log)
	eventBus.Subscribe(auditRecorder)
	reportInvalidator := reportapp.NewReportInvalidator(reportService)
	eventBus.Subscribe(reportInvalidator, reportInvalidator.EventTypes()...)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := eventBus.Stop(ctx); err != nil {
			log.Warn("Failed to stop event bus", zap.Error(err))
		}
	}()

	// HTTP handlers
	organizationHandler := handler.NewOrganizationHandler(organizationService)
	orderHandler := handler.NewOrderHandler(orderService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	billingPlanHandler := handler.NewBillingPlanHandler(billingPlanService)
	budgetHandler := handler.NewBudgetHandler(budgetService)
	reportHandler := handler.NewReportHandler(reportService)
	systemHandler := handler.NewSystemHandler()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	if cfg.Telemetry.Enabled {
		engine.Use(
			middleware.TracingWithConfig(middleware.TracingConfig{
				ServiceName: cfg.Telemetry.ServiceName,
				Enabled:     true,
			}),
			middleware.SpanErrorMarker(),
		)
	}

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.GET("/health", healthHandler(db, log))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	partnerGroup := router.NewDomainGroup("partner", "/partner").
		POST("/organizations", organizationHandler.Create).
		GET("/organizations", organizationHandler.List).
		GET("/organizations/:id", organizationHandler.GetByID).
		PUT("/organizations/:id", organizationHandler.Update).
		POST("/organizations/:id/addresses", organizationHandler.AddAddress)

	billingGroup := router.NewDomainGroup("billing", "/billing").
		POST("/orders", orderHandler.Create).
		GET("/orders", orderHandler.List).
		GET("/orders/:id", orderHandler.GetByID).
		GET("/orders/number/:number", orderHandler.GetByNumber).
		POST("/orders/:id/activate", orderHandler.Activate).
		POST("/orders/:id/complete", orderHandler.Complete).
		POST("/orders/:id/cancel", orderHandler.Cancel).
		POST("/plans", billingPlanHandler.Create).
		GET("/orders/:id/plan", billingPlanHandler.GetByOrder).
		POST("/orders/:id/plan/items", billingPlanHandler.AddItem).
		POST("/invoices", invoiceHandler.Create).
		POST("/invoices/from-plan", invoiceHandler.CreateFromPlan).
		GET("/invoices", invoiceHandler.List).
		GET("/invoices/:id", invoiceHandler.GetByID).
		POST("/invoices/:id/items", invoiceHandler.AddItem).
		DELETE("/invoices/:id/items/:item_id", invoiceHandler.RemoveItem).
		POST("/invoices/:id/send", invoiceHandler.MarkSent).
		POST("/invoices/:id/document", invoiceHandler.ArchiveDocument).
		POST("/invoices/:id/payments", invoiceHandler.RecordPayment)

	budgetGroup := router.NewDomainGroup("budget", "/budget").
		POST("/plans", budgetHandler.SubmitPlan).
		GET("/orders/:order_id/plan", budgetHandler.GetLatestPlan).
		GET("/orders/:order_id/plan/versions", budgetHandler.ListPlanVersions).
		POST("/costs", budgetHandler.RecordCost).
		GET("/orders/:order_id/costs", budgetHandler.ListCosts).
		POST("/costs/:id/paid", budgetHandler.MarkCostPaid)

	reportsGroup := router.NewDomainGroup("reports", "/reports").
		GET("/orders/:order_id/reconciliation", reportHandler.Reconcile)

	systemGroup := router.NewDomainGroup("system", "/system").
		GET("/info", systemHandler.GetSystemInfo).
		GET("/ping", systemHandler.Ping)

	r.Register(partnerGroup).
		Register(billingGroup).
		Register(budgetGroup).
		Register(reportsGroup).
		Register(systemGroup)

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
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// healthHandler reports process and database health for load balancer probes
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "up"

		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Error("Health check database ping failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			dbStatus = "down"
		}

		c.JSON(status, gin.H{
			"status":   map[bool]string{true: "ok", false: "degraded"}[status == http.StatusOK],
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
		})
	}
}
