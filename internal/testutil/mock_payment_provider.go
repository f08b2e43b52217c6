package testutil

import (
	"context"

	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	"github.com/NinnOgTonic/antaeus/internal/domain/payment"
	"github.com/stretchr/testify/mock"
)

var _ payment.Provider = (*MockPaymentProvider)(nil)

// MockPaymentProvider is a testify mock of payment.Provider
type MockPaymentProvider struct {
	mock.Mock
}

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{}
}

// Charge implements payment.Provider
func (m *MockPaymentProvider) Charge(ctx context.Context, inv *invoice.Invoice) (bool, error) {
	args := m.Called(ctx, inv)
	return args.Bool(0), args.Error(1)
}

// InvoiceWithID matches the invoice argument of Charge by id
func InvoiceWithID(id string) interface{} {
	return mock.MatchedBy(func(inv *invoice.Invoice) bool {
		return inv != nil && inv.ID == id
	})
}
