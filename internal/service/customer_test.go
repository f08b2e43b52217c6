package service

import (
	"testing"
	"time"

	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/testutil"
	"github.com/NinnOgTonic/antaeus/internal/types"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type CustomerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service   CustomerService
	customers *testutil.InMemoryCustomerStore
}

func TestCustomerService(t *testing.T) {
	suite.Run(t, new(CustomerServiceSuite))
}

func (s *CustomerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
}

func (s *CustomerServiceSuite) setupService() {
	s.customers = s.GetStores().CustomerRepo.(*testutil.InMemoryCustomerStore)
	s.service = NewCustomerService(ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		Metrics:      s.GetMetrics(),
		Cache:        s.GetCache(),
		CustomerRepo: s.customers,
		InvoiceRepo:  s.GetStores().InvoiceRepo,
		Now:          s.GetNow,
	})
}

func (s *CustomerServiceSuite) TestCreateCustomer() {
	c, err := s.service.CreateCustomer(s.GetContext(), types.CurrencyGBP, "cus_123")
	s.Require().NoError(err)
	s.Contains(c.ID, types.UUID_PREFIX_CUSTOMER)
	s.Equal(types.CurrencyGBP, c.Currency)

	_, err = s.service.CreateCustomer(s.GetContext(), types.Currency("XYZ"), "")
	s.True(ierr.IsValidation(err))
}

func (s *CustomerServiceSuite) TestGetCustomerIsCached() {
	c := s.CreateCustomer(types.CurrencyEUR)

	first, err := s.service.GetCustomer(s.GetContext(), c.ID)
	s.Require().NoError(err)
	second, err := s.service.GetCustomer(s.GetContext(), c.ID)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(1, s.customers.GetCalls())
	s.Equal(float64(1), promtestutil.ToFloat64(s.GetMetrics().CacheHitsTotal.WithLabelValues("customer")))
}

func (s *CustomerServiceSuite) TestGetCustomerNotFound() {
	_, err := s.service.GetCustomer(s.GetContext(), "cust_missing")
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *CustomerServiceSuite) TestListCustomers() {
	a := s.CreateCustomer(types.CurrencyEUR)
	b := s.CreateCustomer(types.CurrencyUSD)

	all, err := s.service.ListCustomers(s.GetContext())
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(a.ID, all[0].ID)
	s.Equal(b.ID, all[1].ID)
}

func (s *CustomerServiceSuite) TestListCustomersWithoutInvoiceInCurrentPeriod() {
	invoiced := s.CreateCustomer(types.CurrencyEUR)
	s.CreateInvoice(invoiced, "10.00", types.InvoiceStatusPending, s.GetNow())

	old := s.CreateCustomer(types.CurrencyEUR)
	s.CreateInvoice(old, "10.00", types.InvoiceStatusPaid, types.BillingPeriodFor(s.GetNow()).Start.Add(-time.Hour))

	fresh := s.CreateCustomer(types.CurrencyUSD)

	eligible, err := s.service.ListCustomersWithoutInvoiceInCurrentPeriod(s.GetContext(), 0)
	s.Require().NoError(err)
	s.Require().Len(eligible, 2)
	s.Equal(old.ID, eligible[0].ID)
	s.Equal(fresh.ID, eligible[1].ID)

	limited, err := s.service.ListCustomersWithoutInvoiceInCurrentPeriod(s.GetContext(), 1)
	s.Require().NoError(err)
	s.Len(limited, 1)
}
