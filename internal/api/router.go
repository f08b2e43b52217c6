package api

import (
	"github.com/NinnOgTonic/antaeus/internal/api/cron"
	v1 "github.com/NinnOgTonic/antaeus/internal/api/v1"
	"github.com/NinnOgTonic/antaeus/internal/config"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/metrics"
	"github.com/NinnOgTonic/antaeus/internal/rest/middleware"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Invoice  *v1.InvoiceHandler
	Customer *v1.CustomerHandler
	// Jobs is nil when this process does not run the scheduler
	Jobs *cron.JobHandler
}

func NewRouter(
	handlers Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	m *metrics.Metrics,
	registry *prometheus.Registry,
) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.SentryErrorReporter,
		middleware.LoggingMiddleware(logger),
		middleware.MetricsMiddleware(m),
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	// v1 routes
	v1Group := router.Group("/rest/v1")
	{
		invoices := v1Group.Group("/invoices")
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)

		customers := v1Group.Group("/customers")
		customers.GET("", handlers.Customer.ListCustomers)
		customers.GET("/:id", handlers.Customer.GetCustomer)
	}

	if handlers.Jobs != nil {
		cronGroup := router.Group("/cron")
		cronGroup.POST("/billing/run", handlers.Jobs.RunBilling)
		cronGroup.POST("/invoices/generate", handlers.Jobs.RunInvoiceGeneration)
	}

	return router
}
