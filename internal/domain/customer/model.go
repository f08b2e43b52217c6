package customer

import (
	"time"

	"github.com/NinnOgTonic/antaeus/internal/types"
)

// Customer is a billable party. Every field is fixed once the
// customer has been created.
type Customer struct {
	// ID is the unique identifier for the customer
	ID string `json:"id"`

	// Currency is the currency every invoice of this customer is issued in
	Currency types.Currency `json:"currency"`

	// PaymentCustomerRef is the customer's identifier at the payment backend, if any
	PaymentCustomerRef string `json:"payment_customer_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// New builds a customer with a fresh identifier
func New(currency types.Currency, paymentCustomerRef string) *Customer {
	return &Customer{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Currency:           currency,
		PaymentCustomerRef: paymentCustomerRef,
		CreatedAt:          time.Now().UTC(),
	}
}

func (c *Customer) Validate() error {
	return c.Currency.Validate()
}
