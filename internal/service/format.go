package service

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/expenso-app/expenso-backend/internal/model"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount with the currency symbol and grouped
// thousands, e.g. ₹1,250.00.
func FormatAmount(currency model.Currency, amount float64) string {
	return amountPrinter.Sprintf("%s%v", currency.Symbol(),
		number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
