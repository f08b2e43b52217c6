package service

import (
	"time"

	"github.com/NinnOgTonic/antaeus/internal/cache"
	"github.com/NinnOgTonic/antaeus/internal/config"
	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	"github.com/NinnOgTonic/antaeus/internal/domain/payment"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/metrics"
	"github.com/NinnOgTonic/antaeus/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger  *logger.Logger
	Config  *config.Configuration
	Metrics *metrics.Metrics
	Sentry  *sentry.Service
	Cache   cache.Cache

	// Repositories
	CustomerRepo customer.Repository
	InvoiceRepo  invoice.Repository

	// Payment backend
	PaymentProvider payment.Provider

	// Now is the clock used for billing periods, time.Now when nil
	Now func() time.Time
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	metrics *metrics.Metrics,
	sentry *sentry.Service,
	cache cache.Cache,
	customerRepo customer.Repository,
	invoiceRepo invoice.Repository,
	paymentProvider payment.Provider,
) ServiceParams {
	return ServiceParams{
		Logger:          logger,
		Config:          config,
		Metrics:         metrics,
		Sentry:          sentry,
		Cache:           cache,
		CustomerRepo:    customerRepo,
		InvoiceRepo:     invoiceRepo,
		PaymentProvider: paymentProvider,
	}
}

func (p ServiceParams) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
