package scheduler

import (
	"context"

	"github.com/NinnOgTonic/antaeus/internal/config"
	"github.com/NinnOgTonic/antaeus/internal/service"
)

const (
	JobBilling           = "billing"
	JobInvoiceGeneration = "invoice_generation"
)

// RegisterJobs schedules the billing and invoice generation procedures
func RegisterJobs(
	s *Scheduler,
	cfg *config.Configuration,
	billing service.BillingService,
	generation service.InvoiceGenerationService,
) error {
	if err := s.Register(JobInvoiceGeneration, cfg.InvoiceGeneration.Interval(), func(ctx context.Context) (any, error) {
		return generation.RunGenerationBatch(ctx)
	}); err != nil {
		return err
	}

	return s.Register(JobBilling, cfg.Billing.Interval(), func(ctx context.Context) (any, error) {
		return billing.RunBillingBatch(ctx)
	})
}
