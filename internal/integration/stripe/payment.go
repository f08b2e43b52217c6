package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	"github.com/NinnOgTonic/antaeus/internal/domain/payment"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

// PaymentProvider charges invoices off-session against the stripe customer's
// default payment method
type PaymentProvider struct {
	client       *Client
	customerRepo customer.Repository
	logger       *logger.Logger
}

func NewPaymentProvider(client *Client, customerRepo customer.Repository, logger *logger.Logger) payment.Provider {
	return &PaymentProvider{
		client:       client,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

func (p *PaymentProvider) Charge(ctx context.Context, inv *invoice.Invoice) (bool, error) {
	c, err := p.customerRepo.Get(ctx, inv.CustomerID)
	if err != nil {
		if ierr.IsDatabase(err) {
			return false, ierr.WithError(err).
				WithHint("Could not load customer for charge").
				Mark(ierr.ErrNetwork)
		}
		return false, err
	}

	if c.PaymentCustomerRef == "" {
		p.logger.Warnw("customer has no stripe customer, cannot charge",
			"invoice_id", inv.ID,
			"customer_id", c.ID,
		)
		return false, nil
	}

	paymentMethodID, err := p.defaultPaymentMethod(ctx, c)
	if err != nil {
		return false, err
	}
	if paymentMethodID == "" {
		p.logger.Infow("stripe customer has no default payment method",
			"invoice_id", inv.ID,
			"customer_id", c.ID,
			"stripe_customer_id", c.PaymentCustomerRef,
		)
		return false, nil
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:        stripe.Int64(toMinorUnits(inv.Amount.Value)),
		Currency:      stripe.String(strings.ToLower(string(inv.Amount.Currency))),
		Customer:      stripe.String(c.PaymentCustomerRef),
		PaymentMethod: stripe.String(paymentMethodID),
		OffSession:    stripe.Bool(true),
		Confirm:       stripe.Bool(true),
		Metadata: map[string]string{
			"invoice_id":  inv.ID,
			"customer_id": c.ID,
		},
	}
	params.SetIdempotencyKey(IdempotencyKey(inv.ID, time.Now()))

	intent, err := p.client.paymentIntents.Create(ctx, params)
	if err != nil {
		return p.handleError(inv, err)
	}

	p.logger.Infow("stripe payment intent created",
		"invoice_id", inv.ID,
		"payment_intent_id", intent.ID,
		"status", intent.Status,
	)

	return intent.Status == stripe.PaymentIntentStatusSucceeded, nil
}

func (p *PaymentProvider) defaultPaymentMethod(ctx context.Context, c *customer.Customer) (string, error) {
	sc, err := p.client.customers.Retrieve(ctx, c.PaymentCustomerRef, nil)
	if err != nil {
		return "", classifyError(err)
	}
	if sc.InvoiceSettings == nil || sc.InvoiceSettings.DefaultPaymentMethod == nil {
		return "", nil
	}
	return sc.InvoiceSettings.DefaultPaymentMethod.ID, nil
}

// handleError turns card errors into a declined charge and classifies the rest
func (p *PaymentProvider) handleError(inv *invoice.Invoice, err error) (bool, error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
		p.logger.Infow("stripe declined charge",
			"invoice_id", inv.ID,
			"code", stripeErr.Code,
			"decline_code", stripeErr.DeclineCode,
		)
		return false, nil
	}
	return false, classifyError(err)
}

// classifyError marks connectivity, rate limiting and stripe side failures as
// transient. Anything else, such as auth or invalid requests, is unexpected.
func classifyError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		// no api response at all, the request never completed
		return ierr.WithError(err).
			WithHint("Stripe could not be reached").
			Mark(ierr.ErrNetwork)
	}

	details := map[string]any{
		"stripe_error_type": stripeErr.Type,
		"stripe_error_code": stripeErr.Code,
		"http_status":       stripeErr.HTTPStatusCode,
		"request_id":        stripeErr.RequestID,
	}

	if stripeErr.Type == stripe.ErrorTypeAPI ||
		stripeErr.Code == stripe.ErrorCodeRateLimit ||
		stripeErr.HTTPStatusCode == http.StatusTooManyRequests ||
		stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
		return ierr.WithError(err).
			WithHint("Stripe is temporarily unavailable").
			WithReportableDetails(details).
			Mark(ierr.ErrNetwork)
	}

	return ierr.WithError(err).
		WithHint("Stripe rejected the request").
		WithReportableDetails(details).
		Mark(ierr.ErrSystem)
}

// toMinorUnits converts an amount to cents. Every supported currency has two decimals.
func toMinorUnits(value decimal.Decimal) int64 {
	return value.Shift(2).Round(0).IntPart()
}

// IdempotencyKey scopes stripe retries of one invoice to a UTC day, so a
// charge replayed after a crash before the status update is not collected twice
func IdempotencyKey(invoiceID string, now time.Time) string {
	return fmt.Sprintf("antaeus_%s_%s", invoiceID, now.UTC().Format("20060102"))
}
