package service

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/shopspring/decimal"
)

// AmountPolicy decides how much a customer is invoiced for a billing period
type AmountPolicy interface {
	AmountFor(ctx context.Context, c *customer.Customer) (types.Money, error)
}

// RandomAmountPolicy draws a uniform amount in [Min, Max) rounded down to
// cents. It stands in for real pricing.
type RandomAmountPolicy struct {
	Min decimal.Decimal
	Max decimal.Decimal

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomAmountPolicy returns the default policy, amounts in [10, 500)
func NewRandomAmountPolicy(rng *rand.Rand) *RandomAmountPolicy {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomAmountPolicy{
		Min: decimal.NewFromInt(10),
		Max: decimal.NewFromInt(500),
		rng: rng,
	}
}

func (p *RandomAmountPolicy) AmountFor(_ context.Context, c *customer.Customer) (types.Money, error) {
	if !p.Min.LessThan(p.Max) {
		return types.Money{}, ierr.NewError("invalid amount range").
			WithHintf("Minimum %s must be below maximum %s", p.Min, p.Max).
			Mark(ierr.ErrValidation)
	}

	p.mu.Lock()
	f := p.rng.Float64()
	p.mu.Unlock()

	span := p.Max.Sub(p.Min)
	value := p.Min.Add(span.Mul(decimal.NewFromFloat(f))).RoundDown(2)
	// rounding can only move towards Min, but guard the open upper bound anyway
	if !value.LessThan(p.Max) {
		value = p.Max.Sub(decimal.New(1, -2))
	}
	return types.NewMoney(value, c.Currency), nil
}

// FixedAmountPolicy invoices every customer the same value in their own currency
type FixedAmountPolicy struct {
	Value decimal.Decimal
}

func (p FixedAmountPolicy) AmountFor(_ context.Context, c *customer.Customer) (types.Money, error) {
	return types.NewMoney(p.Value, c.Currency), nil
}
