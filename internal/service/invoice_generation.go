package service

import (
	"context"
	"time"

	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/cockroachdb/errors"
)

// GenerationResult summarises one invoice generation batch
type GenerationResult struct {
	Period   string        `json:"period"`
	Eligible int           `json:"eligible"`
	Created  int           `json:"created"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// InvoiceGenerationService creates the invoice of the current billing period
// for every customer that has none yet
type InvoiceGenerationService interface {
	RunGenerationBatch(ctx context.Context) (*GenerationResult, error)
}

type invoiceGenerationService struct {
	ServiceParams
	invoices  InvoiceService
	customers CustomerService
	amounts   AmountPolicy
}

func NewInvoiceGenerationService(params ServiceParams, invoices InvoiceService, customers CustomerService, amounts AmountPolicy) InvoiceGenerationService {
	if amounts == nil {
		amounts = NewRandomAmountPolicy(nil)
	}
	return &invoiceGenerationService{
		ServiceParams: params,
		invoices:      invoices,
		customers:     customers,
		amounts:       amounts,
	}
}

func (s *invoiceGenerationService) RunGenerationBatch(ctx context.Context) (*GenerationResult, error) {
	start := time.Now()
	log := s.Logger.WithContext(ctx)
	batchSize := s.Config.InvoiceGeneration.BatchSize

	result := &GenerationResult{
		Period: types.BillingPeriodFor(s.now()).String(),
	}

	eligible, err := s.customers.ListCustomersWithoutInvoiceInCurrentPeriod(ctx, batchSize)
	if err != nil {
		log.Errorw("failed to list customers eligible for invoicing",
			"error", err,
			"batch_size", batchSize,
		)
		return nil, ierr.WithError(err).
			WithHint("Could not load customers to invoice").
			Mark(ierr.ErrDatabase)
	}
	result.Eligible = len(eligible)

	if len(eligible) == 0 {
		log.Debugw("no customers to invoice", "period", result.Period)
		result.Duration = time.Since(start)
		return result, nil
	}

	var errs []error
	for _, c := range eligible {
		amount, err := s.amounts.AmountFor(ctx, c)
		if err == nil {
			_, err = s.invoices.CreateInvoice(ctx, amount, c, types.InvoiceStatusPending)
		}
		if err != nil {
			result.Failed++
			s.Metrics.InvoicesGeneratedTotal.WithLabelValues("failed").Inc()
			log.Errorw("failed to create invoice for customer",
				"error", err,
				"customer_id", c.ID,
				"period", result.Period,
			)
			errs = append(errs, errors.Wrapf(err, "customer %s", c.ID))
			continue
		}
		result.Created++
		s.Metrics.InvoicesGeneratedTotal.WithLabelValues("created").Inc()
	}

	result.Duration = time.Since(start)
	log.Infow("invoice generation batch finished",
		"period", result.Period,
		"eligible", result.Eligible,
		"created", result.Created,
		"failed", result.Failed,
		"duration_ms", result.Duration.Milliseconds(),
	)

	if len(errs) > 0 {
		return result, ierr.WithError(errors.Join(errs...)).
			WithHintf("%d of %d invoices could not be created", result.Failed, result.Eligible).
			WithReportableDetails(map[string]any{
				"period":  result.Period,
				"created": result.Created,
				"failed":  result.Failed,
			}).
			Mark(ierr.ErrSystem)
	}
	return result, nil
}
