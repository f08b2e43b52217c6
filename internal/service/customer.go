package service

import (
	"context"

	"github.com/NinnOgTonic/antaeus/internal/cache"
	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/types"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, currency types.Currency, paymentCustomerRef string) (*customer.Customer, error)
	GetCustomer(ctx context.Context, id string) (*customer.Customer, error)
	ListCustomers(ctx context.Context) ([]*customer.Customer, error)
	// ListCustomersWithoutInvoiceInCurrentPeriod returns up to limit customers
	// not yet invoiced this billing period, all of them when limit is 0
	ListCustomersWithoutInvoiceInCurrentPeriod(ctx context.Context, limit int) ([]*customer.Customer, error)
}

type customerService struct {
	ServiceParams
}

func NewCustomerService(params ServiceParams) CustomerService {
	return &customerService{
		ServiceParams: params,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, currency types.Currency, paymentCustomerRef string) (*customer.Customer, error) {
	c := customer.New(currency, paymentCustomerRef)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.CustomerRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCustomer caches lookups; customers never change once created
func (s *customerService) GetCustomer(ctx context.Context, id string) (*customer.Customer, error) {
	if id == "" {
		return nil, ierr.NewError("customer_id is required").
			WithHint("Customer ID is required").
			Mark(ierr.ErrValidation)
	}

	key := cache.GenerateKey(cache.PrefixCustomer, id)
	if s.Cache != nil {
		if cached, found := s.Cache.Get(ctx, key); found {
			if c, ok := cached.(*customer.Customer); ok {
				cp := *c
				return &cp, nil
			}
		}
	}

	c, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		cp := *c
		s.Cache.Set(ctx, key, &cp, 0)
	}
	return c, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	return s.CustomerRepo.List(ctx)
}

func (s *customerService) ListCustomersWithoutInvoiceInCurrentPeriod(ctx context.Context, limit int) ([]*customer.Customer, error) {
	if limit < 0 {
		return nil, ierr.NewError("limit must be non negative").
			WithHint("Limit cannot be negative").
			Mark(ierr.ErrValidation)
	}
	period := types.BillingPeriodFor(s.now())
	return s.CustomerRepo.ListWithoutInvoiceInPeriod(ctx, period, limit)
}
