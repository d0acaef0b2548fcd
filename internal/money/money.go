// Package money holds the fixed-point helpers used for SIM balances.
// Every amount the pipeline persists carries exactly two fractional digits.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept on balances and fees.
const Places = 2

// Round rounds half away from zero to two decimal places.
func Round(v decimal.Decimal) decimal.Decimal {
	return v.Round(Places)
}

// Sub returns round(a - b, 2). Rounding happens only on the final result.
func Sub(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Sub(b))
}

// Add returns round(a + b, 2).
func Add(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Add(b))
}

// Parse reads a decimal amount from user or settings input.
func Parse(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// Format renders an amount with exactly two fractional digits.
func Format(v decimal.Decimal) string {
	return v.StringFixed(Places)
}
