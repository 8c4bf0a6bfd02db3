package money

import (
	"github.com/shopspring/decimal"
)

// zero-decimal currencies; everything else uses two
var minorDigits = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
}

// Format renders an amount in minor units, e.g. 12345 USD -> "123.45 USD".
func Format(amountMinor int64, currency string) string {
	return Decimal(amountMinor, currency).StringFixed(exponent(currency)) + " " + currency
}

func Decimal(amountMinor int64, currency string) decimal.Decimal {
	return decimal.New(amountMinor, -exponent(currency))
}

func exponent(currency string) int32 {
	if d, ok := minorDigits[currency]; ok {
		return d
	}
	return 2
}
