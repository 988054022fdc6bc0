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
	billingapp "github.com/netbill/backend/internal/application/billing"
	catalogapp "github.com/netbill/backend/internal/application/catalog"
	identityapp "github.com/netbill/backend/internal/application/identity"
	notifyapp "github.com/netbill/backend/internal/application/notify"
	opsapp "github.com/netbill/backend/internal/application/ops"
	reportapp "github.com/netbill/backend/internal/application/report"
	subscriberapp "github.com/netbill/backend/internal/application/subscriber"
	domainbilling "github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/ops"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/netbill/backend/internal/infrastructure/auth"
	"github.com/netbill/backend/internal/infrastructure/cache"
	"github.com/netbill/backend/internal/infrastructure/config"
	"github.com/netbill/backend/internal/infrastructure/gateway"
	"github.com/netbill/backend/internal/infrastructure/logger"
	"github.com/netbill/backend/internal/infrastructure/persistence"
	"github.com/netbill/backend/internal/infrastructure/storage"
	"github.com/netbill/backend/internal/infrastructure/telemetry"
	"github.com/netbill/backend/internal/interfaces/http/handler"
	"github.com/netbill/backend/internal/interfaces/http/middleware"
	"github.com/netbill/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting NetBill backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry providers are no-ops when disabled, so the wiring below
	// stays unconditional.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
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

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
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

	gormLevel := logger.MapGormLogLevel(cfg.Log.Level)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, gormLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(cfg.Database.DBName); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected")

	// Repositories
	planRepo := persistence.NewGormServicePlanRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	usageRepo := persistence.NewGormNetworkUsageRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	resetLogRepo := persistence.NewGormSystemResetLogRepository(db.DB)
	settingRepo := persistence.NewGormSystemSettingRepository(db.DB)
	reportRepo := persistence.NewGormBillingReportRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)
	resetExecutor := persistence.NewGormResetExecutor(db.DB)

	// Idempotency store: Redis when reachable, process-local otherwise.
	var idempotency domainbilling.IdempotencyStore
	redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis, cfg.Billing.IdempotencyTTL)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
		idempotency = cache.NewInMemoryIdempotencyStore(cfg.Billing.IdempotencyTTL)
	} else {
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		idempotency = redisStore
	}

	// External gateways, each selected by config
	var mpesa domainbilling.MobileMoneyGateway
	if cfg.Mpesa.Enabled {
		mpesa = gateway.NewMpesaAdapter(cfg.Mpesa, log)
	} else {
		mpesa = gateway.NewMockMpesaGateway(log)
	}
	smsSender := gateway.NewSMSSender(cfg.SMS, log)
	whatsappSender := gateway.NewWhatsAppSender(cfg.WhatsApp, log)
	routerClient := gateway.NewRouterClient(cfg.Router, log)

	var backupStorage ops.BackupStorage
	if cfg.Backup.Enabled {
		backupStorage, err = storage.NewS3BackupStorage(cfg.Backup, log)
		if err != nil {
			log.Fatal("Failed to initialize backup storage", zap.Error(err))
		}
	} else {
		backupStorage, err = storage.NewLocalBackupStorage("backups", log)
		if err != nil {
			log.Fatal("Failed to initialize backup directory", zap.Error(err))
		}
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	planService := catalogapp.NewPlanService(planRepo)
	clientService := subscriberapp.NewClientService(clientRepo, planRepo, routerClient, log)
	usageService := subscriberapp.NewUsageService(usageRepo, clientRepo, routerClient, log)
	invoiceService := billingapp.NewInvoiceService(uow, invoiceRepo, clientRepo, log)
	invoiceService.SetDueDays(cfg.Billing.InvoiceDueDays)
	paymentService := billingapp.NewPaymentService(uow, paymentRepo, idempotency, mpesa, smsSender, log)
	notificationService := notifyapp.NewNotificationService(clientRepo, smsSender, whatsappSender, log)
	reportService := reportapp.NewReportService(reportRepo, log)
	exportService := reportapp.NewExportService(paymentRepo, clientRepo)
	resetService := opsapp.NewResetService(resetExecutor, resetLogRepo, log)
	backupService := opsapp.NewBackupService(clientRepo, planRepo, invoiceRepo, paymentRepo, backupStorage, log)
	statsService := opsapp.NewStatsService(clientRepo, planRepo, invoiceRepo, paymentRepo, usageRepo)
	settingsService := opsapp.NewSettingsService(settingRepo, log)

	// Billing gauges sampled in the background
	billingMetrics, err := telemetry.NewBillingMetrics(telemetry.BillingMetricsConfig{
		Meter:  meterProvider.Meter("netbill.billing"),
		Logger: log,
		Provider: &gaugeProvider{
			clients:  clientRepo,
			invoices: invoiceRepo,
		},
	})
	if err != nil {
		log.Fatal("Failed to initialize billing metrics", zap.Error(err))
	}
	metricsCtx, stopMetrics := context.WithCancel(ctx)
	defer stopMetrics()
	billingMetrics.StartPeriodicCollection(metricsCtx, 5*time.Minute)

	activity := &billingActivity{metrics: billingMetrics}
	invoiceService.SetMetrics(activity)
	paymentService.SetMetrics(activity)
	notificationService.SetMetrics(activity)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.RequestLogger(log))
	engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	engine.Use(middleware.CORSWithOrigins(cfg.HTTP.CORSAllowOrigins))

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithAuthMiddleware(middleware.JWTAuth(jwtService)),
	)
	r.RegisterPublic(handler.NewAuthHandler(authService, jwtService))
	r.RegisterPublic(handler.NewMpesaWebhookHandler(paymentService, clientRepo, log))
	r.Register(handler.NewPlanHandler(planService))
	r.Register(handler.NewClientHandler(clientService, usageService))
	r.Register(handler.NewInvoiceHandler(invoiceService))
	r.Register(handler.NewPaymentHandler(paymentService))
	r.Register(handler.NewReportHandler(reportService, exportService))
	r.Register(handler.NewNetworkHandler(routerClient, log))
	r.Register(handler.NewNotificationHandler(notificationService))
	r.Register(handler.NewSystemHandler(resetService, backupService, statsService, settingsService, usageService, cfg.Billing.UsageRetentionDays))
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

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// billingActivity bridges service-level activity hooks onto the OTel
// billing counters.
type billingActivity struct {
	metrics *telemetry.BillingMetrics
}

func (a *billingActivity) RecordInvoiceIssued(ctx context.Context, amount decimal.Decimal) {
	a.metrics.RecordInvoiceIssued(ctx, amount)
}

func (a *billingActivity) RecordPayment(ctx context.Context, method string, amount decimal.Decimal, succeeded bool) {
	status := telemetry.PaymentStatusSuccess
	if !succeeded {
		status = telemetry.PaymentStatusFailed
	}
	a.metrics.RecordPayment(ctx, method, amount, status)
}

func (a *billingActivity) RecordNotification(ctx context.Context, channel string, delivered bool) {
	a.metrics.RecordNotification(ctx, channel, delivered)
}

// gaugeProvider adapts the repositories to the billing metrics sampler.
type gaugeProvider struct {
	clients  subscriber.ClientRepository
	invoices domainbilling.InvoiceRepository
}

func (p *gaugeProvider) CountActiveClients(ctx context.Context) (int64, error) {
	return p.clients.CountActive(ctx)
}

func (p *gaugeProvider) CountOverdueInvoices(ctx context.Context) (int64, error) {
	overdue, err := p.invoices.FindOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	return int64(len(overdue)), nil
}
