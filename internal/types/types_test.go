package types

import (
	"testing"
	"time"

	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    Currency
		wantErr bool
	}{
		{name: "upper", code: "EUR", want: CurrencyEUR},
		{name: "lower with spaces", code: " dkk ", want: CurrencyDKK},
		{name: "unsupported", code: "JPY", wantErr: true},
		{name: "empty", code: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCurrency(tt.code)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrencySymbol(t *testing.T) {
	assert.Equal(t, "€", CurrencyEUR.Symbol())
	assert.Equal(t, "kr.", CurrencyDKK.Symbol())
	assert.Equal(t, "XYZ", Currency("XYZ").Symbol())
}

func TestMoney(t *testing.T) {
	a := NewMoney(decimal.RequireFromString("10.5"), CurrencyUSD)
	b := NewMoney(decimal.RequireFromString("10.50"), CurrencyUSD)
	c := NewMoney(decimal.RequireFromString("10.50"), CurrencyEUR)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "10.50 USD", a.String())

	require.NoError(t, NewMoney(decimal.Zero, CurrencySEK).Validate())

	err := NewMoney(decimal.NewFromInt(-1), CurrencySEK).Validate()
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	err = NewMoney(decimal.NewFromInt(1), Currency("JPY")).Validate()
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestInvoiceStatus(t *testing.T) {
	assert.NoError(t, InvoiceStatusPending.Validate())
	assert.NoError(t, InvoiceStatusPaid.Validate())
	assert.True(t, ierr.IsValidation(InvoiceStatus("VOID").Validate()))

	assert.True(t, InvoiceStatusPending.CanTransitionTo(InvoiceStatusPaid))
	assert.False(t, InvoiceStatusPaid.CanTransitionTo(InvoiceStatusPending))
	assert.False(t, InvoiceStatusPaid.CanTransitionTo(InvoiceStatusPaid))
	assert.False(t, InvoiceStatusPending.CanTransitionTo(InvoiceStatusPending))

	assert.True(t, InvoiceStatusPaid.IsTerminal())
	assert.False(t, InvoiceStatusPending.IsTerminal())
	assert.False(t, InvoiceStatus("VOID").IsTerminal())
}

func TestBillingPeriodFor(t *testing.T) {
	tests := []struct {
		name  string
		at    time.Time
		start time.Time
		end   time.Time
	}{
		{
			name:  "mid month",
			at:    time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "december rolls the year",
			at:    time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
			start: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "non utc input is converted",
			at:    time.Date(2024, 5, 1, 1, 0, 0, 0, time.FixedZone("CEST", 2*60*60)),
			start: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BillingPeriodFor(tt.at)
			assert.True(t, tt.start.Equal(p.Start))
			assert.True(t, tt.end.Equal(p.End))
			assert.True(t, p.Contains(tt.at))
		})
	}

	p := BillingPeriodFor(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	assert.True(t, p.Contains(p.Start))
	assert.False(t, p.Contains(p.End))
	assert.Equal(t, "2024-02", p.String())
}

func TestPageParamsNormalize(t *testing.T) {
	p := PageParams{}
	require.NoError(t, p.Normalize())
	assert.Equal(t, DefaultPageLimit, p.Limit)

	for _, bad := range []PageParams{
		{Limit: -1},
		{Limit: MaxPageLimit + 1},
		{Limit: 10, Offset: -1},
	} {
		err := bad.Normalize()
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := Paginate(items, PageParams{Limit: 2, Offset: 1})
	assert.Equal(t, []int{2, 3}, page.Items)
	assert.Equal(t, 5, page.Pagination.Total)

	page = Paginate(items, PageParams{Limit: 10, Offset: 4})
	assert.Equal(t, []int{5}, page.Items)

	page = Paginate(items, PageParams{Limit: 10, Offset: 9})
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)

	empty := Paginate([]string(nil), PageParams{Limit: 10})
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.Pagination.Total)
}

func TestGenerateUUIDWithPrefix(t *testing.T) {
	id := GenerateUUIDWithPrefix(UUID_PREFIX_INVOICE)
	assert.Regexp(t, `^inv_[0-9A-Z]{26}$`, id)
	assert.Len(t, GenerateUUIDWithPrefix(""), 26)

	first := GenerateUUIDWithPrefix(UUID_PREFIX_CUSTOMER)
	second := GenerateUUIDWithPrefix(UUID_PREFIX_CUSTOMER)
	assert.NotEqual(t, first, second)
}
