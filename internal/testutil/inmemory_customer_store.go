package testutil

import (
	"context"
	"sync"

	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/samber/lo"
)

var _ customer.Repository = (*InMemoryCustomerStore)(nil)

// InMemoryCustomerStore implements customer.Repository. It reads the invoice
// store to answer eligibility queries.
type InMemoryCustomerStore struct {
	*InMemoryStore[*customer.Customer]
	invoices *InMemoryInvoiceStore

	// ListErr makes List and ListWithoutInvoiceInPeriod fail
	ListErr error

	mu       sync.Mutex
	getCalls int
}

func NewInMemoryCustomerStore(invoices *InMemoryInvoiceStore) *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		InMemoryStore: NewInMemoryStore[*customer.Customer](),
		invoices:      invoices,
	}
}

func copyCustomer(c *customer.Customer) *customer.Customer {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func byCustomerID(a, b *customer.Customer) bool {
	return a.ID < b.ID
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *customer.Customer) error {
	return s.InMemoryStore.Create(ctx, c.ID, copyCustomer(c))
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*customer.Customer, error) {
	s.mu.Lock()
	s.getCalls++
	s.mu.Unlock()

	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Customer %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyCustomer(c), nil
}

// GetCalls returns how many lookups reached the store
func (s *InMemoryCustomerStore) GetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls
}

func (s *InMemoryCustomerStore) List(ctx context.Context) ([]*customer.Customer, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return s.copyAll(s.InMemoryStore.List(ctx, nil, byCustomerID, 0)), nil
}

func (s *InMemoryCustomerStore) ListWithoutInvoiceInPeriod(ctx context.Context, period types.BillingPeriod, limit int) ([]*customer.Customer, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	invoiced := make(map[string]bool)
	if s.invoices != nil {
		all := s.invoices.InMemoryStore.List(ctx, func(_ context.Context, inv *invoice.Invoice) bool {
			return period.Contains(inv.DueAt)
		}, nil, 0)
		for _, inv := range all {
			invoiced[inv.CustomerID] = true
		}
	}

	items := s.InMemoryStore.List(ctx, func(_ context.Context, c *customer.Customer) bool {
		return !invoiced[c.ID]
	}, byCustomerID, limit)
	return s.copyAll(items), nil
}

func (s *InMemoryCustomerStore) copyAll(items []*customer.Customer) []*customer.Customer {
	return lo.Map(items, func(c *customer.Customer, _ int) *customer.Customer {
		return copyCustomer(c)
	})
}

func (s *InMemoryCustomerStore) Clear() {
	s.InMemoryStore.Clear()
	s.ListErr = nil
	s.mu.Lock()
	s.getCalls = 0
	s.mu.Unlock()
}
