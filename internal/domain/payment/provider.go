package payment

import (
	"context"

	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
)

// Provider charges invoices against an external payment backend.
//
// Charge returns true when the amount was collected and false when the
// customer could not pay (declined, insufficient funds). Errors marked with
// ierr.ErrNetwork are transient and the charge can be retried later; any
// other error is unexpected.
type Provider interface {
	Charge(ctx context.Context, inv *invoice.Invoice) (bool, error)
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func(ctx context.Context, inv *invoice.Invoice) (bool, error)

func (f ProviderFunc) Charge(ctx context.Context, inv *invoice.Invoice) (bool, error) {
	return f(ctx, inv)
}
