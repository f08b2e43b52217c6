package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/samber/lo"
)

var _ invoice.Repository = (*InMemoryInvoiceStore)(nil)

// InMemoryInvoiceStore implements invoice.Repository. Beyond storage it
// records bulk status updates and lets tests inject failures.
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]

	mu sync.Mutex
	// ListPendingErr, UpdateStatusErr and CreateErrs make the matching calls fail
	ListPendingErr  error
	UpdateStatusErr error
	CreateErrs      map[string]error
	// OnListPending can rewrite the result of ListPending, eg to return stale rows
	OnListPending func([]*invoice.Invoice) []*invoice.Invoice

	updateCalls [][]string
	createCalls int
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
		CreateErrs:    make(map[string]error),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	return &c
}

func byInvoiceID(a, b *invoice.Invoice) bool {
	return a.ID < b.ID
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Invoice %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context) ([]*invoice.Invoice, error) {
	items := s.InMemoryStore.List(ctx, nil, byInvoiceID, 0)
	return lo.Map(items, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(inv)
	}), nil
}

func (s *InMemoryInvoiceStore) ListPending(ctx context.Context, limit int) ([]*invoice.Invoice, error) {
	s.mu.Lock()
	listErr, hook := s.ListPendingErr, s.OnListPending
	s.mu.Unlock()

	if listErr != nil {
		return nil, listErr
	}

	items := s.InMemoryStore.List(ctx, func(_ context.Context, inv *invoice.Invoice) bool {
		return inv.Status == types.InvoiceStatusPending
	}, byInvoiceID, limit)

	result := lo.Map(items, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(inv)
	})
	if hook != nil {
		result = hook(result)
	}
	return result, nil
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, amount types.Money, c *customer.Customer, status types.InvoiceStatus, dueAt time.Time) (*invoice.Invoice, error) {
	s.mu.Lock()
	s.createCalls++
	createErr := s.CreateErrs[c.ID]
	s.mu.Unlock()

	if createErr != nil {
		return nil, createErr
	}

	inv := &invoice.Invoice{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		CustomerID: c.ID,
		Amount:     amount,
		Status:     status,
		DueAt:      dueAt.UTC(),
	}
	if err := s.InMemoryStore.Create(ctx, inv.ID, inv); err != nil {
		return nil, err
	}
	return s.Get(ctx, inv.ID)
}

// Insert stores a fully formed invoice, for arranging test state
func (s *InMemoryInvoiceStore) Insert(ctx context.Context, inv *invoice.Invoice) error {
	return s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv))
}

func (s *InMemoryInvoiceStore) UpdateStatus(ctx context.Context, invoices []*invoice.Invoice, status types.InvoiceStatus) error {
	if len(invoices) == 0 {
		return nil
	}

	ids := lo.Map(invoices, func(inv *invoice.Invoice, _ int) string {
		return inv.ID
	})

	s.mu.Lock()
	s.updateCalls = append(s.updateCalls, ids)
	updateErr := s.UpdateStatusErr
	s.mu.Unlock()

	if updateErr != nil {
		return updateErr
	}

	for _, id := range ids {
		stored, err := s.InMemoryStore.Get(ctx, id)
		if err != nil {
			continue
		}
		if !stored.Status.CanTransitionTo(status) {
			continue
		}
		updated := copyInvoice(stored)
		updated.Status = status
		if err := s.InMemoryStore.Update(ctx, id, updated); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatusCalls returns the invoice ids passed to each UpdateStatus call
func (s *InMemoryInvoiceStore) UpdateStatusCalls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Map(s.updateCalls, func(ids []string, _ int) []string {
		return append([]string(nil), ids...)
	})
}

// CreateCalls returns how many times Create was called
func (s *InMemoryInvoiceStore) CreateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCalls
}

func (s *InMemoryInvoiceStore) Clear() {
	s.InMemoryStore.Clear()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListPendingErr = nil
	s.UpdateStatusErr = nil
	s.CreateErrs = make(map[string]error)
	s.OnListPending = nil
	s.updateCalls = nil
	s.createCalls = 0
}
