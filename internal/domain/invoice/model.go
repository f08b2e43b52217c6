package invoice

import (
	"time"

	"github.com/NinnOgTonic/antaeus/internal/types"
)

// Invoice is a request for payment of an amount by a customer
type Invoice struct {
	// ID is assigned by the store on creation
	ID string `json:"id"`

	CustomerID string `json:"customer_id"`

	// Amount always carries the owning customer's currency
	Amount types.Money `json:"amount"`

	Status types.InvoiceStatus `json:"status"`

	// DueAt is set once when the invoice is created
	DueAt time.Time `json:"due_at"`
}

func (i *Invoice) IsPending() bool {
	return i.Status == types.InvoiceStatusPending
}
