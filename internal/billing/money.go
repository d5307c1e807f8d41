package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kopecks is printed for {%долг_копейки%}; the bill form shows whole rubles.
const Kopecks = "0"

// ParseAmount reads a money amount from cell text. Spaces and a comma
// decimal separator are accepted; an empty cell is zero.
func ParseAmount(text string) (decimal.Decimal, error) {
	clean := strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(strings.TrimSpace(text))
	if clean == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not an amount", text)
	}
	return d, nil
}

// FormatAmount renders two decimal places with a comma: 4043 -> "4043,00".
func FormatAmount(d decimal.Decimal) string {
	return strings.Replace(d.StringFixedBank(2), ".", ",", 1)
}

// FormatRubles renders the amount rounded to whole rubles, half to even.
func FormatRubles(d decimal.Decimal) string {
	return d.RoundBank(0).String()
}
