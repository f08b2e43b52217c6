package dto

import (
	"time"

	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	"github.com/NinnOgTonic/antaeus/internal/types"
)

type CustomerResponse struct {
	ID        string         `json:"id"`
	Currency  types.Currency `json:"currency"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewCustomerResponse(c *customer.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:        c.ID,
		Currency:  c.Currency,
		CreatedAt: c.CreatedAt,
	}
}

type ListCustomersResponse = types.ListResponse[*CustomerResponse]
