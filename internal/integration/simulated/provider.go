package simulated

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/NinnOgTonic/antaeus/internal/config"
	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	"github.com/NinnOgTonic/antaeus/internal/domain/payment"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/logger"
)

var _ payment.Provider = (*Provider)(nil)

// Provider is an in-process payment backend. Each charge first fails with a
// network error with probability NetworkErrorRate, otherwise it succeeds
// with probability SuccessRate.
type Provider struct {
	successRate      float64
	networkErrorRate float64
	logger           *logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewProvider creates a simulated provider. A nil rng uses a randomly seeded source.
func NewProvider(cfg config.SimulatedConfig, logger *logger.Logger, rng *rand.Rand) *Provider {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Provider{
		successRate:      cfg.SuccessRate,
		networkErrorRate: cfg.NetworkErrorRate,
		logger:           logger,
		rng:              rng,
	}
}

func (p *Provider) Charge(ctx context.Context, inv *invoice.Invoice) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, ierr.WithError(err).
			WithHint("Charge was cancelled").
			Mark(ierr.ErrNetwork)
	}

	p.mu.Lock()
	networkRoll := p.rng.Float64()
	successRoll := p.rng.Float64()
	p.mu.Unlock()

	if networkRoll < p.networkErrorRate {
		p.logger.Debugw("simulated network error", "invoice_id", inv.ID)
		return false, ierr.NewError("simulated payment backend unavailable").
			WithHint("Payment backend is unavailable").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrNetwork)
	}

	return successRoll < p.successRate, nil
}
