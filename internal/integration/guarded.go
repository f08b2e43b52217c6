package integration

import (
	"context"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	"github.com/NinnOgTonic/antaeus/internal/domain/payment"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/sourcegraph/conc/panics"
	"golang.org/x/time/rate"
)

var _ payment.Provider = (*GuardedProvider)(nil)

// GuardedProvider bounds every charge of the wrapped provider by a hard
// timeout and an optional rate limit. Both surface as transient errors.
type GuardedProvider struct {
	next    payment.Provider
	timeout time.Duration
	limiter *rate.Limiter
}

// NewGuardedProvider wraps next. A zero timeout or a nil limiter disables that guard.
func NewGuardedProvider(next payment.Provider, timeout time.Duration, limiter *rate.Limiter) *GuardedProvider {
	return &GuardedProvider{
		next:    next,
		timeout: timeout,
		limiter: limiter,
	}
}

type chargeResult struct {
	ok  bool
	err error
}

func (g *GuardedProvider) Charge(ctx context.Context, inv *invoice.Invoice) (bool, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return false, ierr.WithError(err).
				WithHint("Charge rate limit wait was interrupted").
				Mark(ierr.ErrNetwork)
		}
	}

	if g.timeout <= 0 {
		return g.next.Charge(ctx, inv)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// buffered so an abandoned call can still finish
	done := make(chan chargeResult, 1)
	go func() {
		var (
			res chargeResult
			pc  panics.Catcher
		)
		pc.Try(func() {
			res.ok, res.err = g.next.Charge(ctx, inv)
		})
		if r := pc.Recovered(); r != nil {
			res = chargeResult{err: ierr.WithError(r.AsError()).
				WithHint("Payment provider panicked").
				Mark(ierr.ErrSystem)}
		}
		done <- res
	}()

	select {
	case res := <-done:
		return res.ok, res.err
	case <-ctx.Done():
		return false, ierr.WithError(ctx.Err()).
			WithHintf("Charge did not complete within %s", g.timeout).
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrNetwork)
	}
}
