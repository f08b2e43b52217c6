package types

import (
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus is the payment state of an invoice
type InvoiceStatus string

const (
	// InvoiceStatusPending is the initial state; the invoice is awaiting a successful charge
	InvoiceStatusPending InvoiceStatus = "PENDING"
	// InvoiceStatusPaid is terminal
	InvoiceStatusPaid InvoiceStatus = "PAID"
)

// invoiceStatusTransitions lists the allowed target states for each state
var invoiceStatusTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusPending: {InvoiceStatusPaid},
	InvoiceStatusPaid:    {},
}

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusPending,
		InvoiceStatusPaid,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"status":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CanTransitionTo reports whether moving from s to target is a legal transition
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	return lo.Contains(invoiceStatusTransitions[s], target)
}

// IsTerminal reports whether no transition leaves s
func (s InvoiceStatus) IsTerminal() bool {
	next, ok := invoiceStatusTransitions[s]
	return ok && len(next) == 0
}
