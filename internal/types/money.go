package types

import (
	"fmt"

	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/shopspring/decimal"
)

// Money is a non-negative amount in a single currency. No arithmetic across
// currencies is ever performed on it.
type Money struct {
	Value    decimal.Decimal `json:"value"`
	Currency Currency        `json:"currency"`
}

func NewMoney(value decimal.Decimal, currency Currency) Money {
	return Money{Value: value, Currency: currency}
}

func (m Money) Validate() error {
	if m.Value.IsNegative() {
		return ierr.NewError("amount must be non negative").
			WithHint("Amount cannot be negative").
			WithReportableDetails(map[string]any{
				"value": m.Value.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return m.Currency.Validate()
}

// Equal compares value and currency, ignoring the decimal representation
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Value.Equal(other.Value)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Value.StringFixed(2), m.Currency)
}
