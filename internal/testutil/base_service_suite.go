package testutil

import (
	"context"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/cache"
	"github.com/NinnOgTonic/antaeus/internal/config"
	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/metrics"
	"github.com/NinnOgTonic/antaeus/internal/sentry"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	CustomerRepo customer.Repository
	InvoiceRepo  invoice.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	logger  *logger.Logger
	config  *config.Configuration
	metrics *metrics.Metrics
	cache   *cache.InMemoryCache
	sentry  *sentry.Service
	now     time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := &config.Configuration{
		Deployment: config.DeploymentConfig{Mode: types.ModeLocal},
		Logging: config.LoggingConfig{
			Level: types.LogLevelInfo,
		},
		Billing: config.BillingConfig{
			IntervalMs: 2000,
			BatchSize:  100,
		},
		InvoiceGeneration: config.InvoiceGenerationConfig{
			IntervalMs: 5000,
			BatchSize:  50,
		},
		Payment: config.PaymentConfig{
			Provider: types.PaymentProviderSimulated,
		},
		Cache: config.CacheConfig{
			Enabled:    true,
			TTLSeconds: 60,
		},
	}
	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
	s.sentry = sentry.NewSentryService(cfg, s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.now = time.Now().UTC()
	s.metrics = metrics.NewMetrics(prometheus.NewRegistry())
	s.cache = cache.NewInMemoryCache(s.config, s.metrics)
	s.setupStores()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	invoices := NewInMemoryInvoiceStore()
	s.stores = Stores{
		InvoiceRepo:  invoices,
		CustomerRepo: NewInMemoryCustomerStore(invoices),
	}
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.CustomerRepo.(*InMemoryCustomerStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.cache.Flush(s.ctx)
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetMetrics returns the metrics registered for the current test
func (s *BaseServiceTestSuite) GetMetrics() *metrics.Metrics {
	return s.metrics
}

// GetCache returns the cache of the current test
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetSentry returns a disabled sentry service
func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentry
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// CreateCustomer stores a customer billed in currency
func (s *BaseServiceTestSuite) CreateCustomer(currency types.Currency) *customer.Customer {
	c := customer.New(currency, "")
	s.Require().NoError(s.stores.CustomerRepo.Create(s.ctx, c))
	return c
}

// CreateInvoice stores an invoice with the given state, bypassing validation
func (s *BaseServiceTestSuite) CreateInvoice(c *customer.Customer, value string, status types.InvoiceStatus, dueAt time.Time) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		CustomerID: c.ID,
		Amount:     types.NewMoney(decimal.RequireFromString(value), c.Currency),
		Status:     status,
		DueAt:      dueAt.UTC(),
	}
	s.Require().NoError(s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Insert(s.ctx, inv))
	return inv
}
