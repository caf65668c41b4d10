package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var displayPrinter = message.NewPrinter(language.MustParse("en-IN"))

// Format renders the amount for display with the rupee sign and Indian digit
// grouping ("₹1,00,000.00"). Display formatting only; never feed the result
// back into arithmetic.
func (m Money) Format() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return displayPrinter.Sprintf("%s₹%v.%02d", sign, number.Decimal(v/PaisePerRupee), v%PaisePerRupee)
}
