package payments

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ParseCurrency parses an ISO 4217 code, case-insensitively.
func ParseCurrency(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return unit, nil
}

// SameCurrency reports whether two codes name the same valid currency.
func SameCurrency(a, b string) bool {
	ua, err := ParseCurrency(a)
	if err != nil {
		return false
	}
	ub, err := ParseCurrency(b)
	if err != nil {
		return false
	}
	return ua == ub
}

func minorScale(code string) (int32, error) {
	unit, err := ParseCurrency(code)
	if err != nil {
		return 0, err
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale), nil
}

// ToMinorUnits converts an amount to the smallest unit of the currency,
// e.g. 59.99 USD to 5999.
func ToMinorUnits(amount decimal.Decimal, code string) (int64, error) {
	scale, err := minorScale(code)
	if err != nil {
		return 0, err
	}
	return amount.Shift(scale).Round(0).IntPart(), nil
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64, code string) (decimal.Decimal, error) {
	scale, err := minorScale(code)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.New(minor, -scale), nil
}
