package stripe

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/testutil"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
)

type mockPaymentIntents struct {
	mock.Mock
}

func (m *mockPaymentIntents) Create(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, params)
	pi, _ := args.Get(0).(*stripe.PaymentIntent)
	return pi, args.Error(1)
}

type mockCustomers struct {
	mock.Mock
}

func (m *mockCustomers) Retrieve(ctx context.Context, id string, params *stripe.CustomerRetrieveParams) (*stripe.Customer, error) {
	args := m.Called(ctx, id, params)
	c, _ := args.Get(0).(*stripe.Customer)
	return c, args.Error(1)
}

type PaymentProviderSuite struct {
	suite.Suite
	ctx       context.Context
	intents   *mockPaymentIntents
	customers *mockCustomers
	store     *testutil.InMemoryCustomerStore
	provider  *PaymentProvider
	customer  *customer.Customer
	invoice   *invoice.Invoice
}

func TestPaymentProvider(t *testing.T) {
	suite.Run(t, new(PaymentProviderSuite))
}

func (s *PaymentProviderSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.intents = &mockPaymentIntents{}
	s.customers = &mockCustomers{}
	s.store = testutil.NewInMemoryCustomerStore(testutil.NewInMemoryInvoiceStore())

	s.customer = customer.New(types.CurrencyEUR, "cus_ABC")
	s.Require().NoError(s.store.Create(s.ctx, s.customer))
	s.invoice = &invoice.Invoice{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		CustomerID: s.customer.ID,
		Amount:     types.NewMoney(decimal.RequireFromString("123.45"), types.CurrencyEUR),
		Status:     types.InvoiceStatusPending,
		DueAt:      time.Now().UTC(),
	}

	client := &Client{paymentIntents: s.intents, customers: s.customers}
	s.provider = NewPaymentProvider(client, s.store, logger.NewNopLogger()).(*PaymentProvider)
}

func (s *PaymentProviderSuite) withDefaultPaymentMethod() {
	s.customers.On("Retrieve", mock.Anything, "cus_ABC", mock.Anything).Return(&stripe.Customer{
		ID: "cus_ABC",
		InvoiceSettings: &stripe.CustomerInvoiceSettings{
			DefaultPaymentMethod: &stripe.PaymentMethod{ID: "pm_card"},
		},
	}, nil)
}

func (s *PaymentProviderSuite) TestChargeSucceeded() {
	s.withDefaultPaymentMethod()
	s.intents.On("Create", mock.Anything, mock.MatchedBy(func(p *stripe.PaymentIntentCreateParams) bool {
		return *p.Amount == 12345 &&
			*p.Currency == "eur" &&
			*p.Customer == "cus_ABC" &&
			*p.PaymentMethod == "pm_card" &&
			*p.OffSession && *p.Confirm &&
			p.Metadata["invoice_id"] == s.invoice.ID &&
			*p.IdempotencyKey == IdempotencyKey(s.invoice.ID, time.Now())
	})).Return(&stripe.PaymentIntent{ID: "pi_1", Status: stripe.PaymentIntentStatusSucceeded}, nil).Once()

	ok, err := s.provider.Charge(s.ctx, s.invoice)
	s.Require().NoError(err)
	s.True(ok)
	s.intents.AssertExpectations(s.T())
}

func (s *PaymentProviderSuite) TestChargeRequiresAction() {
	s.withDefaultPaymentMethod()
	s.intents.On("Create", mock.Anything, mock.Anything).
		Return(&stripe.PaymentIntent{ID: "pi_1", Status: stripe.PaymentIntentStatusRequiresAction}, nil).Once()

	ok, err := s.provider.Charge(s.ctx, s.invoice)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *PaymentProviderSuite) TestCardDeclined() {
	s.withDefaultPaymentMethod()
	s.intents.On("Create", mock.Anything, mock.Anything).Return(nil, &stripe.Error{
		Type:           stripe.ErrorTypeCard,
		Code:           stripe.ErrorCodeCardDeclined,
		DeclineCode:    stripe.DeclineCodeInsufficientFunds,
		HTTPStatusCode: http.StatusPaymentRequired,
	}).Once()

	ok, err := s.provider.Charge(s.ctx, s.invoice)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *PaymentProviderSuite) TestErrorClassification() {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{name: "connection", err: errors.New("dial tcp: i/o timeout"), transient: true},
		{name: "api error", err: &stripe.Error{Type: stripe.ErrorTypeAPI, HTTPStatusCode: http.StatusInternalServerError}, transient: true},
		{name: "rate limited", err: &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, Code: stripe.ErrorCodeRateLimit, HTTPStatusCode: http.StatusTooManyRequests}, transient: true},
		{name: "bad gateway", err: &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusBadGateway}, transient: true},
		{name: "invalid request", err: &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusBadRequest}, transient: false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.withDefaultPaymentMethod()
			s.intents.On("Create", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			ok, err := s.provider.Charge(s.ctx, s.invoice)
			s.Require().Error(err)
			s.False(ok)
			s.Equal(tt.transient, ierr.IsNetwork(err))
		})
	}
}

func (s *PaymentProviderSuite) TestCustomerWithoutStripeReference() {
	c := customer.New(types.CurrencyEUR, "")
	s.Require().NoError(s.store.Create(s.ctx, c))
	s.invoice.CustomerID = c.ID

	ok, err := s.provider.Charge(s.ctx, s.invoice)
	s.Require().NoError(err)
	s.False(ok)
	s.customers.AssertNotCalled(s.T(), "Retrieve", mock.Anything, mock.Anything, mock.Anything)
	s.intents.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *PaymentProviderSuite) TestNoDefaultPaymentMethod() {
	s.customers.On("Retrieve", mock.Anything, "cus_ABC", mock.Anything).
		Return(&stripe.Customer{ID: "cus_ABC"}, nil).Once()

	ok, err := s.provider.Charge(s.ctx, s.invoice)
	s.Require().NoError(err)
	s.False(ok)
	s.intents.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *PaymentProviderSuite) TestUnknownCustomer() {
	s.invoice.CustomerID = "cust_missing"

	_, err := s.provider.Charge(s.ctx, s.invoice)
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentProviderSuite) TestMinorUnitsAndIdempotencyKey() {
	s.Equal(int64(1000), toMinorUnits(decimal.NewFromInt(10)))
	s.Equal(int64(1999), toMinorUnits(decimal.RequireFromString("19.99")))
	s.Equal(int64(1), toMinorUnits(decimal.RequireFromString("0.005")))

	day := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	s.Equal("antaeus_inv_1_20240309", IdempotencyKey("inv_1", day))
	s.Equal(IdempotencyKey("inv_1", day), IdempotencyKey("inv_1", day.Add(20*time.Minute)))
	s.NotEqual(IdempotencyKey("inv_1", day), IdempotencyKey("inv_1", day.Add(40*time.Minute)))
}
