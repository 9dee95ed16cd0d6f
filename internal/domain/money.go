package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol is appended to formatted prices.
const CurrencySymbol = "₽"

var pricePrinter = message.NewPrinter(language.Russian)

// FormatPrice renders a whole-rouble amount the way the storefront shows it,
// with ru-RU digit grouping, e.g. "129 990 ₽".
func FormatPrice(amount int64) string {
	return pricePrinter.Sprintf("%d", amount) + " " + CurrencySymbol
}
