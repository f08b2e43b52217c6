package customer

import (
	"context"

	"github.com/NinnOgTonic/antaeus/internal/types"
)

// Repository defines the interface for customer data access
type Repository interface {
	// Create stores a new customer. Only used for administration and seeding.
	Create(ctx context.Context, customer *Customer) error
	Get(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context) ([]*Customer, error)
	// ListWithoutInvoiceInPeriod returns customers that have no invoice due
	// inside period, ordered by id. A limit of 0 returns all of them.
	ListWithoutInvoiceInPeriod(ctx context.Context, period types.BillingPeriod, limit int) ([]*Customer, error)
}
