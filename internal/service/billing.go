package service

import (
	"context"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/metrics"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/panics"
)

// BillingResult summarises one billing batch. Every fetched invoice lands in
// exactly one outcome bucket unless the batch was interrupted.
type BillingResult struct {
	Fetched   int           `json:"fetched"`
	Charged   int           `json:"charged"`
	Declined  int           `json:"declined"`
	Transient int           `json:"transient"`
	Anomalies int           `json:"anomalies"`
	Skipped   int           `json:"skipped"`
	Paid      []string      `json:"paid_invoice_ids"`
	Duration  time.Duration `json:"duration"`
}

// BillingService collects payment for pending invoices
type BillingService interface {
	RunBillingBatch(ctx context.Context) (*BillingResult, error)
}

type billingService struct {
	ServiceParams
	invoices InvoiceService
}

func NewBillingService(params ServiceParams, invoices InvoiceService) BillingService {
	return &billingService{
		ServiceParams: params,
		invoices:      invoices,
	}
}

func (s *billingService) RunBillingBatch(ctx context.Context) (*BillingResult, error) {
	start := time.Now()
	log := s.Logger.WithContext(ctx)
	batchSize := s.Config.Billing.BatchSize

	pending, err := s.invoices.ListPendingInvoices(ctx, batchSize)
	if err != nil {
		s.Metrics.BillingBatchFailures.Inc()
		log.Errorw("failed to fetch pending invoices",
			"error", err,
			"batch_size", batchSize,
		)
		return nil, ierr.WithError(err).
			WithHint("Could not load pending invoices").
			Mark(ierr.ErrDatabase)
	}

	result := &BillingResult{Fetched: len(pending)}
	charged := make([]*invoice.Invoice, 0, len(pending))

	for i, inv := range pending {
		if ctx.Err() != nil {
			result.Skipped = len(pending) - i
			log.Infow("billing batch interrupted, leaving remaining invoices pending",
				"remaining", result.Skipped,
			)
			break
		}

		switch outcome := s.charge(ctx, inv); outcome {
		case metrics.OutcomeCharged:
			result.Charged++
			charged = append(charged, inv)
		case metrics.OutcomeDeclined:
			result.Declined++
		case metrics.OutcomeTransient:
			result.Transient++
		default:
			result.Anomalies++
		}
	}

	if len(charged) > 0 {
		// money has been collected, so the status write must not be dropped on shutdown
		if err := s.invoices.MarkAsPaid(context.WithoutCancel(ctx), charged); err != nil {
			ids := lo.Map(charged, func(inv *invoice.Invoice, _ int) string { return inv.ID })
			s.Metrics.BillingBatchFailures.Inc()
			log.Errorw("failed to mark charged invoices as paid",
				"error", err,
				"invoice_ids", ids,
			)
			err = ierr.WithError(err).
				WithHint("Charged invoices could not be marked as paid").
				WithReportableDetails(map[string]any{
					"invoice_ids": ids,
				}).
				Mark(ierr.ErrDatabase)
			s.Sentry.CaptureAnomaly(ctx, err, map[string]string{"stage": "mark_as_paid"})
			result.Duration = time.Since(start)
			return result, err
		}
		result.Paid = lo.Map(charged, func(inv *invoice.Invoice, _ int) string { return inv.ID })
		s.Metrics.BillingInvoicesPaid.Add(float64(len(charged)))
	}

	result.Duration = time.Since(start)
	log.Infow("billing batch finished",
		"fetched", result.Fetched,
		"charged", result.Charged,
		"declined", result.Declined,
		"transient", result.Transient,
		"anomalies", result.Anomalies,
		"skipped", result.Skipped,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// charge attempts one invoice and classifies the attempt into a single outcome
func (s *billingService) charge(ctx context.Context, inv *invoice.Invoice) string {
	log := s.Logger.WithContext(ctx)

	if !inv.IsPending() {
		log.Errorw("skipping invoice that is not pending",
			"invoice_id", inv.ID,
			"customer_id", inv.CustomerID,
			"status", inv.Status,
		)
		err := ierr.NewError("non pending invoice in pending batch").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"status":     inv.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
		s.Sentry.CaptureAnomaly(ctx, err, map[string]string{
			"stage":      "verify",
			"invoice_id": inv.ID,
		})
		s.Metrics.RecordCharge(metrics.OutcomeAnomaly)
		return metrics.OutcomeAnomaly
	}

	var (
		ok  bool
		err error
		pc  panics.Catcher
	)
	pc.Try(func() {
		ok, err = s.PaymentProvider.Charge(ctx, inv)
	})
	if r := pc.Recovered(); r != nil {
		err = ierr.WithError(r.AsError()).
			WithHint("Payment provider panicked").
			Mark(ierr.ErrSystem)
		ok = false
	}

	var outcome string
	switch {
	case err == nil && ok:
		outcome = metrics.OutcomeCharged
		log.Debugw("invoice charged", "invoice_id", inv.ID, "amount", inv.Amount.String())
	case err == nil:
		outcome = metrics.OutcomeDeclined
		log.Infow("charge declined",
			"invoice_id", inv.ID,
			"customer_id", inv.CustomerID,
			"amount", inv.Amount.String(),
		)
	case ierr.IsNetwork(err):
		outcome = metrics.OutcomeTransient
		log.Infow("transient failure while charging, will retry next run",
			"invoice_id", inv.ID,
			"customer_id", inv.CustomerID,
			"error", err,
		)
	default:
		outcome = metrics.OutcomeAnomaly
		log.Errorw("unexpected failure while charging",
			"invoice_id", inv.ID,
			"customer_id", inv.CustomerID,
			"error", err,
		)
		s.Sentry.CaptureAnomaly(ctx, err, map[string]string{
			"stage":      "charge",
			"invoice_id": inv.ID,
		})
	}

	s.Metrics.RecordCharge(outcome)
	return outcome
}
