/*
currency.go - Static USD conversion table

PURPOSE:
  Invoice totals arrive in the store's local currency. The dashboard
  reports everything in USD through a fixed, compiled-in rate table; there
  is no live rate feed. Unknown or missing currency codes are treated as
  already-USD (rate 1).

RATES:
  Stored as units-per-USD divisors so the arithmetic stays exact under
  decimal division: 92 EUR / 0.92 = 100 USD.
*/
package enrich

import "github.com/shopspring/decimal"

var usdPerUnitDivisor = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"EUR": decimal.RequireFromString("0.92"),
	"CNY": decimal.RequireFromString("6.45"),
	"GBP": decimal.RequireFromString("0.82"),
}

// ToUSD converts an amount in the given currency to USD. Unknown
// currencies pass through unchanged.
func ToUSD(amount decimal.Decimal, currency string) decimal.Decimal {
	rate, ok := usdPerUnitDivisor[currency]
	if !ok {
		return amount
	}
	return amount.Div(rate)
}
