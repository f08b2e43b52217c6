package service

import (
	"testing"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/testutil"
	"github.com/NinnOgTonic/antaeus/internal/types"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceGenerationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service   InvoiceGenerationService
	invoices  *testutil.InMemoryInvoiceStore
	customers *testutil.InMemoryCustomerStore
}

func TestInvoiceGenerationService(t *testing.T) {
	suite.Run(t, new(InvoiceGenerationServiceSuite))
}

func (s *InvoiceGenerationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
}

func (s *InvoiceGenerationServiceSuite) setupService() {
	s.invoices = s.GetStores().InvoiceRepo.(*testutil.InMemoryInvoiceStore)
	s.customers = s.GetStores().CustomerRepo.(*testutil.InMemoryCustomerStore)

	params := ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		Metrics:      s.GetMetrics(),
		Sentry:       s.GetSentry(),
		Cache:        s.GetCache(),
		CustomerRepo: s.customers,
		InvoiceRepo:  s.invoices,
		Now:          s.GetNow,
	}
	s.service = NewInvoiceGenerationService(
		params,
		NewInvoiceService(params),
		NewCustomerService(params),
		FixedAmountPolicy{Value: decimal.NewFromInt(99)},
	)
}

func (s *InvoiceGenerationServiceSuite) invoicesOf(customerID string) []*invoice.Invoice {
	all, err := s.invoices.List(s.GetContext())
	s.Require().NoError(err)
	return lo.Filter(all, func(inv *invoice.Invoice, _ int) bool { return inv.CustomerID == customerID })
}

func (s *InvoiceGenerationServiceSuite) TestCreatesOnePendingInvoicePerCustomer() {
	currencies := []types.Currency{types.CurrencyEUR, types.CurrencyDKK, types.CurrencyGBP}
	for _, cur := range currencies {
		s.CreateCustomer(cur)
	}

	result, err := s.service.RunGenerationBatch(s.GetContext())
	s.Require().NoError(err)
	s.Equal(3, result.Eligible)
	s.Equal(3, result.Created)
	s.Equal(0, result.Failed)
	s.Equal(types.BillingPeriodFor(s.GetNow()).String(), result.Period)
	s.Equal(3, s.invoices.CreateCalls())

	customers, err := s.customers.List(s.GetContext())
	s.Require().NoError(err)
	for _, c := range customers {
		invs := s.invoicesOf(c.ID)
		s.Require().Len(invs, 1)
		s.Equal(types.InvoiceStatusPending, invs[0].Status)
		s.Equal(c.Currency, invs[0].Amount.Currency)
		s.True(decimal.NewFromInt(99).Equal(invs[0].Amount.Value))
	}
	s.Equal(float64(3), promtestutil.ToFloat64(s.GetMetrics().InvoicesGeneratedTotal.WithLabelValues("created")))
}

func (s *InvoiceGenerationServiceSuite) TestNoEligibleCustomers() {
	result, err := s.service.RunGenerationBatch(s.GetContext())
	s.Require().NoError(err)
	s.Equal(0, result.Eligible)
	s.Equal(0, s.invoices.CreateCalls())
}

func (s *InvoiceGenerationServiceSuite) TestSecondRunSkipsInvoicedCustomers() {
	s.CreateCustomer(types.CurrencyEUR)
	s.CreateCustomer(types.CurrencyUSD)

	_, err := s.service.RunGenerationBatch(s.GetContext())
	s.Require().NoError(err)

	result, err := s.service.RunGenerationBatch(s.GetContext())
	s.Require().NoError(err)
	s.Equal(0, result.Eligible)
	s.Equal(2, s.invoices.CreateCalls())
}

func (s *InvoiceGenerationServiceSuite) TestPreviousPeriodInvoiceDoesNotBlock() {
	c := s.CreateCustomer(types.CurrencySEK)
	lastPeriod := types.BillingPeriodFor(s.GetNow()).Start.Add(-24 * time.Hour)
	s.CreateInvoice(c, "50.00", types.InvoiceStatusPaid, lastPeriod)

	result, err := s.service.RunGenerationBatch(s.GetContext())
	s.Require().NoError(err)
	s.Equal(1, result.Created)
	s.Len(s.invoicesOf(c.ID), 2)
}

func (s *InvoiceGenerationServiceSuite) TestInvoiceIsDueInTheQueriedPeriod() {
	endOfMonth := time.Date(2023, 1, 31, 23, 59, 59, 0, time.UTC)
	params := ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		Metrics:      s.GetMetrics(),
		Sentry:       s.GetSentry(),
		Cache:        s.GetCache(),
		CustomerRepo: s.customers,
		InvoiceRepo:  s.invoices,
		Now:          func() time.Time { return endOfMonth },
	}
	svc := NewInvoiceGenerationService(
		params,
		NewInvoiceService(params),
		NewCustomerService(params),
		FixedAmountPolicy{Value: decimal.NewFromInt(99)},
	)
	c := s.CreateCustomer(types.CurrencyEUR)

	result, err := svc.RunGenerationBatch(s.GetContext())
	s.Require().NoError(err)
	s.Equal("2023-01", result.Period)
	s.Equal(1, result.Created)

	invs := s.invoicesOf(c.ID)
	s.Require().Len(invs, 1)
	s.True(endOfMonth.Equal(invs[0].DueAt))
	s.True(types.BillingPeriodFor(endOfMonth).Contains(invs[0].DueAt))

	result, err = svc.RunGenerationBatch(s.GetContext())
	s.Require().NoError(err)
	s.Equal(0, result.Eligible)
	s.Equal(1, s.invoices.CreateCalls())
}

func (s *InvoiceGenerationServiceSuite) TestFailureForOneCustomerDoesNotStopOthers() {
	a := s.CreateCustomer(types.CurrencyEUR)
	b := s.CreateCustomer(types.CurrencyEUR)
	c := s.CreateCustomer(types.CurrencyEUR)
	s.invoices.CreateErrs[b.ID] = ierr.NewError("insert failed").Mark(ierr.ErrDatabase)

	result, err := s.service.RunGenerationBatch(s.GetContext())
	s.Require().Error(err)
	s.Require().NotNil(result)
	s.Equal(3, result.Eligible)
	s.Equal(2, result.Created)
	s.Equal(1, result.Failed)
	s.Equal(3, s.invoices.CreateCalls())
	s.Len(s.invoicesOf(a.ID), 1)
	s.Empty(s.invoicesOf(b.ID))
	s.Len(s.invoicesOf(c.ID), 1)
	s.ErrorContains(err, b.ID)
}

func (s *InvoiceGenerationServiceSuite) TestBatchSizeLimitsCustomers() {
	for i := 0; i < 4; i++ {
		s.CreateCustomer(types.CurrencyUSD)
	}
	s.GetConfig().InvoiceGeneration.BatchSize = 3
	defer func() { s.GetConfig().InvoiceGeneration.BatchSize = 50 }()

	result, err := s.service.RunGenerationBatch(s.GetContext())
	s.Require().NoError(err)
	s.Equal(3, result.Created)

	result, err = s.service.RunGenerationBatch(s.GetContext())
	s.Require().NoError(err)
	s.Equal(1, result.Created)
}

func (s *InvoiceGenerationServiceSuite) TestListFailure() {
	s.CreateCustomer(types.CurrencyUSD)
	s.customers.ListErr = ierr.NewError("connection refused").Mark(ierr.ErrDatabase)

	result, err := s.service.RunGenerationBatch(s.GetContext())
	s.Require().Error(err)
	s.Nil(result)
	s.Equal(0, s.invoices.CreateCalls())
}
