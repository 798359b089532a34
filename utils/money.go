package utils

import "github.com/shopspring/decimal"

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// AmountFromMinor converts minor currency units (cents) to a major amount.
func AmountFromMinor(minor int64) float64 {
	return decimal.New(minor, -2).InexactFloat64()
}

// ToMinorUnits converts a major amount to minor units, rounding half away
// from zero.
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}
