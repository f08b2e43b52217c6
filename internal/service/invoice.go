package service

import (
	"context"

	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/samber/lo"
)

// InvoiceService is the only way the procedures read and write invoices
type InvoiceService interface {
	GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error)
	ListInvoices(ctx context.Context) ([]*invoice.Invoice, error)
	// ListPendingInvoices returns up to limit pending invoices, all of them when limit is 0
	ListPendingInvoices(ctx context.Context, limit int) ([]*invoice.Invoice, error)
	CreateInvoice(ctx context.Context, amount types.Money, c *customer.Customer, status types.InvoiceStatus) (*invoice.Invoice, error)
	// MarkAsPaid transitions all given invoices to PAID in a single store operation
	MarkAsPaid(ctx context.Context, invoices []*invoice.Invoice) error
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	if id == "" {
		return nil, ierr.NewError("invoice_id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}
	return s.InvoiceRepo.Get(ctx, id)
}

func (s *invoiceService) ListInvoices(ctx context.Context) ([]*invoice.Invoice, error) {
	return s.InvoiceRepo.List(ctx)
}

func (s *invoiceService) ListPendingInvoices(ctx context.Context, limit int) ([]*invoice.Invoice, error) {
	if limit < 0 {
		return nil, ierr.NewError("limit must be non negative").
			WithHint("Limit cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return s.InvoiceRepo.ListPending(ctx, limit)
}

func (s *invoiceService) CreateInvoice(ctx context.Context, amount types.Money, c *customer.Customer, status types.InvoiceStatus) (*invoice.Invoice, error) {
	if c == nil {
		return nil, ierr.NewError("customer is required").
			WithHint("An invoice must belong to a customer").
			Mark(ierr.ErrValidation)
	}
	if err := amount.Validate(); err != nil {
		return nil, err
	}
	if amount.Currency != c.Currency {
		return nil, ierr.NewError("invoice currency does not match customer currency").
			WithHintf("Invoices for this customer must be in %s", c.Currency).
			WithReportableDetails(map[string]any{
				"customer_id":       c.ID,
				"customer_currency": c.Currency,
				"amount_currency":   amount.Currency,
			}).
			Mark(ierr.ErrValidation)
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Create(ctx, amount, c, status, s.now())
	if err != nil {
		return nil, err
	}

	s.Logger.Debugw("created invoice",
		"invoice_id", inv.ID,
		"customer_id", c.ID,
		"amount", amount.String(),
		"status", status,
	)
	return inv, nil
}

func (s *invoiceService) MarkAsPaid(ctx context.Context, invoices []*invoice.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	illegal := lo.Filter(invoices, func(inv *invoice.Invoice, _ int) bool {
		return !inv.Status.CanTransitionTo(types.InvoiceStatusPaid)
	})
	if len(illegal) > 0 {
		return ierr.NewError("invoices cannot be marked as paid").
			WithHint("Only pending invoices can be marked as paid").
			WithReportableDetails(map[string]any{
				"invoice_ids": lo.Map(illegal, func(inv *invoice.Invoice, _ int) string { return inv.ID }),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	return s.InvoiceRepo.UpdateStatus(ctx, invoices, types.InvoiceStatusPaid)
}
