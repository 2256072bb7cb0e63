package shared

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// RoundCents rounds a monetary amount to two decimal places, half away
// from zero.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount renders a monetary amount with its currency code for
// human-facing output.
func FormatAmount(currency string, v float64) string {
	return moneyPrinter.Sprintf("%s %.2f", currency, v)
}
