package types

import (
	"strings"

	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/samber/lo"
)

// Currency is an ISO 4217 code from the closed set of currencies we bill in
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyDKK Currency = "DKK"
	CurrencySEK Currency = "SEK"
	CurrencyGBP Currency = "GBP"
)

// SupportedCurrencies lists every currency a customer can be billed in
var SupportedCurrencies = []Currency{
	CurrencyEUR,
	CurrencyUSD,
	CurrencyDKK,
	CurrencySEK,
	CurrencyGBP,
}

// CURRENCY_CODES_SYMBOLS maps supported currencies to their display symbols
var CURRENCY_CODES_SYMBOLS = map[Currency]string{
	CurrencyEUR: "€",
	CurrencyUSD: "$",
	CurrencyDKK: "kr.",
	CurrencySEK: "kr",
	CurrencyGBP: "£",
}

func (c Currency) String() string {
	return string(c)
}

func (c Currency) Validate() error {
	if !lo.Contains(SupportedCurrencies, c) {
		return ierr.NewError("invalid currency").
			WithHintf("Currency %q is not supported", string(c)).
			WithReportableDetails(map[string]any{
				"allowed": SupportedCurrencies,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Symbol returns the display symbol, falling back to the code itself
func (c Currency) Symbol() string {
	if symbol, ok := CURRENCY_CODES_SYMBOLS[c]; ok {
		return symbol
	}
	return string(c)
}

// ParseCurrency normalises a code read from storage or config
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}
