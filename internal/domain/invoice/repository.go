package invoice

import (
	"context"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	"github.com/NinnOgTonic/antaeus/internal/types"
)

// Repository defines the interface for invoice data access
type Repository interface {
	Get(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context) ([]*Invoice, error)
	// ListPending returns pending invoices ordered by id. A limit of 0 returns all of them.
	ListPending(ctx context.Context, limit int) ([]*Invoice, error)
	// Create inserts a new invoice for customer due at dueAt and returns it as stored
	Create(ctx context.Context, amount types.Money, customer *customer.Customer, status types.InvoiceStatus, dueAt time.Time) (*Invoice, error)
	// UpdateStatus sets status on every given invoice as one operation
	UpdateStatus(ctx context.Context, invoices []*Invoice, status types.InvoiceStatus) error
}
