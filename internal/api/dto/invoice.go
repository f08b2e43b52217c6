package dto

import (
	"time"

	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	"github.com/NinnOgTonic/antaeus/internal/types"
)

type MoneyResponse struct {
	Value    string         `json:"value"`
	Currency types.Currency `json:"currency"`
}

func NewMoneyResponse(m types.Money) MoneyResponse {
	return MoneyResponse{
		Value:    m.Value.StringFixed(2),
		Currency: m.Currency,
	}
}

type InvoiceResponse struct {
	ID         string              `json:"id"`
	CustomerID string              `json:"customer_id"`
	Amount     MoneyResponse       `json:"amount"`
	Status     types.InvoiceStatus `json:"status"`
	DueAt      time.Time           `json:"due_at"`
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:         inv.ID,
		CustomerID: inv.CustomerID,
		Amount:     NewMoneyResponse(inv.Amount),
		Status:     inv.Status,
		DueAt:      inv.DueAt,
	}
}

// ListInvoicesRequest filters the invoice listing
type ListInvoicesRequest struct {
	types.PageParams
	Status types.InvoiceStatus `form:"status"`
}

type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]
