package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	"github.com/NinnOgTonic/antaeus/internal/domain/payment"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestGuardedProvider_PassesThrough(t *testing.T) {
	next := payment.ProviderFunc(func(context.Context, *invoice.Invoice) (bool, error) {
		return true, nil
	})
	ok, err := NewGuardedProvider(next, time.Second, nil).Charge(context.Background(), &invoice.Invoice{ID: "inv_1"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGuardedProvider_KeepsProviderErrors(t *testing.T) {
	boom := errors.New("boom")
	next := payment.ProviderFunc(func(context.Context, *invoice.Invoice) (bool, error) {
		return false, boom
	})
	_, err := NewGuardedProvider(next, time.Second, nil).Charge(context.Background(), &invoice.Invoice{ID: "inv_1"})
	assert.ErrorIs(t, err, boom)
	assert.False(t, ierr.IsNetwork(err))
}

func TestGuardedProvider_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	next := payment.ProviderFunc(func(context.Context, *invoice.Invoice) (bool, error) {
		<-release
		return true, nil
	})

	start := time.Now()
	ok, err := NewGuardedProvider(next, 20*time.Millisecond, nil).Charge(context.Background(), &invoice.Invoice{ID: "inv_1"})
	require.Error(t, err)
	assert.True(t, ierr.IsNetwork(err))
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGuardedProvider_Panic(t *testing.T) {
	next := payment.ProviderFunc(func(context.Context, *invoice.Invoice) (bool, error) {
		panic("unexpected")
	})
	ok, err := NewGuardedProvider(next, time.Second, nil).Charge(context.Background(), &invoice.Invoice{ID: "inv_1"})
	require.Error(t, err)
	assert.False(t, ok)
	assert.False(t, ierr.IsNetwork(err))
}

func TestGuardedProvider_RateLimitCancelled(t *testing.T) {
	calls := 0
	next := payment.ProviderFunc(func(context.Context, *invoice.Invoice) (bool, error) {
		calls++
		return true, nil
	})
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	guarded := NewGuardedProvider(next, 0, limiter)

	_, err := guarded.Charge(context.Background(), &invoice.Invoice{ID: "inv_1"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = guarded.Charge(ctx, &invoice.Invoice{ID: "inv_2"})
	require.Error(t, err)
	assert.True(t, ierr.IsNetwork(err))
	assert.Equal(t, 1, calls)
}
