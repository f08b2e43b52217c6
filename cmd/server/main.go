package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/api"
	"github.com/NinnOgTonic/antaeus/internal/api/cron"
	v1 "github.com/NinnOgTonic/antaeus/internal/api/v1"
	"github.com/NinnOgTonic/antaeus/internal/cache"
	"github.com/NinnOgTonic/antaeus/internal/config"
	"github.com/NinnOgTonic/antaeus/internal/domain/payment"
	"github.com/NinnOgTonic/antaeus/internal/integration"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/metrics"
	"github.com/NinnOgTonic/antaeus/internal/postgres"
	"github.com/NinnOgTonic/antaeus/internal/repository"
	"github.com/NinnOgTonic/antaeus/internal/scheduler"
	"github.com/NinnOgTonic/antaeus/internal/sentry"
	"github.com/NinnOgTonic/antaeus/internal/service"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

func init() {
	// Billing periods are computed in UTC
	time.Local = time.UTC
}

func main() {
	// Initialize Fx application
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Metrics
			metrics.NewRegistry,
			metrics.NewMetrics,

			// Cache
			fx.Annotate(cache.NewInMemoryCache, fx.As(new(cache.Cache))),

			// Postgres
			postgres.NewDB,

			// Repositories
			repository.NewCustomerRepository,
			repository.NewInvoiceRepository,

			// Payment provider
			integration.NewFactory,
			providePaymentProvider,
		),
		sentry.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewInvoiceService,
			service.NewCustomerService,
			provideAmountPolicy,
			service.NewInvoiceGenerationService,
			service.NewBillingService,

			scheduler.New,
		),
	)

	// API layer
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			registerDBHooks,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func providePaymentProvider(f *integration.Factory) (payment.Provider, error) {
	return f.GetPaymentProvider()
}

func provideAmountPolicy() service.AmountPolicy {
	return service.NewRandomAmountPolicy(nil)
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	db *postgres.DB,
	invoiceService service.InvoiceService,
	customerService service.CustomerService,
	sched *scheduler.Scheduler,
) api.Handlers {
	handlers := api.Handlers{
		Health:   v1.NewHealthHandler(db, logger),
		Invoice:  v1.NewInvoiceHandler(invoiceService, logger),
		Customer: v1.NewCustomerHandler(customerService, logger),
	}
	// triggers only make sense where the jobs are registered
	if cfg.Deployment.Mode.RunsScheduler() {
		handlers.Jobs = cron.NewJobHandler(sched, logger)
	}
	return handlers
}

func provideRouter(
	handlers api.Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	m *metrics.Metrics,
	registry *prometheus.Registry,
) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, m, registry)
}

func registerDBHooks(lc fx.Lifecycle, db *postgres.DB, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("Closing database connections...")
			db.Close()
			return nil
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	sched *scheduler.Scheduler,
	billing service.BillingService,
	generation service.InvoiceGenerationService,
	log *logger.Logger,
) error {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}
	if err := mode.Validate(); err != nil {
		return err
	}

	log.Infow("starting antaeus", "mode", mode)

	if mode.RunsScheduler() {
		if err := startScheduler(lc, sched, cfg, billing, generation); err != nil {
			return err
		}
	}
	if mode.RunsAPI() {
		startAPIServer(lc, r, cfg, log)
	}
	return nil
}

func startScheduler(
	lc fx.Lifecycle,
	sched *scheduler.Scheduler,
	cfg *config.Configuration,
	billing service.BillingService,
	generation service.InvoiceGenerationService,
) error {
	if err := scheduler.RegisterJobs(sched, cfg, billing, generation); err != nil {
		return err
	}
	scheduler.RegisterHooks(lc, sched)
	return nil
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", srv.Addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
