package integration

import (
	"github.com/NinnOgTonic/antaeus/internal/config"
	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	"github.com/NinnOgTonic/antaeus/internal/domain/payment"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/integration/simulated"
	"github.com/NinnOgTonic/antaeus/internal/integration/stripe"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"golang.org/x/time/rate"
)

// Factory builds the configured payment provider
type Factory struct {
	config       *config.Configuration
	logger       *logger.Logger
	customerRepo customer.Repository
}

// NewFactory creates a new integration factory
func NewFactory(
	config *config.Configuration,
	logger *logger.Logger,
	customerRepo customer.Repository,
) *Factory {
	return &Factory{
		config:       config,
		logger:       logger,
		customerRepo: customerRepo,
	}
}

// GetPaymentProvider returns the provider selected by payment.provider,
// wrapped with the configured timeout and rate limit
func (f *Factory) GetPaymentProvider() (payment.Provider, error) {
	var (
		provider payment.Provider
		err      error
	)

	switch f.config.Payment.Provider {
	case types.PaymentProviderSimulated:
		provider = simulated.NewProvider(f.config.Payment.Simulated, f.logger, nil)
	case types.PaymentProviderStripe:
		provider, err = f.getStripeProvider()
	default:
		err = ierr.NewError("unsupported payment provider").
			WithHintf("Payment provider %q is not supported", f.config.Payment.Provider).
			Mark(ierr.ErrValidation)
	}
	if err != nil {
		return nil, err
	}

	f.logger.Infow("payment provider ready",
		"provider", f.config.Payment.Provider,
		"charge_timeout_ms", f.config.Payment.ChargeTimeoutMs,
		"rate_limit_per_second", f.config.Payment.RateLimitPerSecond,
	)
	return NewGuardedProvider(provider, f.config.Payment.ChargeTimeout(), f.limiter()), nil
}

func (f *Factory) getStripeProvider() (payment.Provider, error) {
	client, err := stripe.NewClient(f.config)
	if err != nil {
		return nil, err
	}
	return stripe.NewPaymentProvider(client, f.customerRepo, f.logger), nil
}

func (f *Factory) limiter() *rate.Limiter {
	perSecond := f.config.Payment.RateLimitPerSecond
	if perSecond <= 0 {
		return nil
	}
	burst := f.config.Payment.RateLimitBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
