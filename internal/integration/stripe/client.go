package stripe

import (
	"context"

	"github.com/NinnOgTonic/antaeus/internal/config"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/stripe/stripe-go/v82"
)

// paymentIntentAPI is the part of the stripe client used to collect payments
type paymentIntentAPI interface {
	Create(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
}

// customerAPI is the part of the stripe client used to resolve payment methods
type customerAPI interface {
	Retrieve(ctx context.Context, id string, params *stripe.CustomerRetrieveParams) (*stripe.Customer, error)
}

// Client holds the stripe endpoints the payment provider talks to
type Client struct {
	paymentIntents paymentIntentAPI
	customers      customerAPI
}

// NewClient creates a stripe client from the configured secret key
func NewClient(cfg *config.Configuration) (*Client, error) {
	if cfg.Stripe.SecretKey == "" {
		return nil, ierr.NewError("stripe secret key missing").
			WithHint("Stripe is selected as payment provider but stripe.secret_key is empty").
			Mark(ierr.ErrValidation)
	}

	stripeClient := stripe.NewClient(cfg.Stripe.SecretKey, nil)
	return &Client{
		paymentIntents: stripeClient.V1PaymentIntents,
		customers:      stripeClient.V1Customers,
	}, nil
}
