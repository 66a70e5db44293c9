// Package money formats report amounts as currency using integer minor units
// and the Fowler Money pattern, with shopspring/decimal for exact rounding.
package money

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ISO-4217 codes the service refers to by name
const (
	USD = "USD" // fallback for unknown codes
	EUR = "EUR" // default report currency
)

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// NewFromFloat rounds amount half away from zero to the currency's minor unit.
// Unknown currency codes fall back to USD.
func NewFromFloat(amount float64, currencyCode string) *Money {
	code := normalizeCode(currencyCode)
	currency := money.GetCurrency(code)
	if currency == nil {
		code = USD
		currency = money.GetCurrency(USD)
	}

	cents := decimal.NewFromFloat(amount).Shift(int32(currency.Fraction)).Round(0).IntPart()
	return &Money{m: money.New(cents, code)}
}

// Display returns a formatted string for display (e.g., "$1,234.56")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	return m.m.Display()
}

// Fixed2 renders v rounded half away from zero to two decimals, with no
// grouping ("1234.50"). Report cells use it for prices and totals.
func Fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Valid reports whether code is an ISO-4217 currency go-money knows
func Valid(code string) bool {
	return money.GetCurrency(normalizeCode(code)) != nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
