package pricing

import (
	"errors"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// USDToPYG is the fixed conversion rate: guaraníes per USD.
const USDToPYG = 7300

// InstallmentPlans are the payment terms offered on the detail page.
var InstallmentPlans = []int{3, 6, 12}

var ErrInvalidInstallments = errors.New("installment count must be positive")

var printer = message.NewPrinter(language.MustParse("es-PY"))

// FormatPYG converts a USD price to guaraníes and renders it with zero
// decimal places and es-PY grouping, e.g. FormatPYG(10) == "₲ 73.000".
func FormatPYG(usd float64) string {
	pyg := usd * USDToPYG
	return printer.Sprintf("₲ %v", number.Decimal(pyg, number.MaxFractionDigits(0)))
}

// Installment renders the per-installment amount for a total split into
// months equal parts. A non-positive count is rejected, never a division
// by zero.
func Installment(usd float64, months int) (string, error) {
	if months <= 0 {
		return "", ErrInvalidInstallments
	}
	return FormatPYG(usd / float64(months)), nil
}
