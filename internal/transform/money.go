package transform

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// centsToDecimal converts a minor-unit amount to a major-unit string with
// two decimals. amountDecimal wins when set. Both unset yields nil.
func centsToDecimal(amount int64, amountDecimal string) *string {
	var v decimal.Decimal
	switch {
	case amountDecimal != "":
		d, err := decimal.NewFromString(amountDecimal)
		if err != nil {
			return nil
		}
		v = d
	case amount != 0:
		v = decimal.NewFromInt(amount)
	default:
		return nil
	}
	s := v.Div(hundred).StringFixed(2)
	return &s
}

// countDecimals counts the digits after the decimal point of s.
func countDecimals(s *string) int {
	if s == nil {
		return 0
	}
	_, frac, ok := strings.Cut(*s, ".")
	if !ok {
		return 0
	}
	return len(frac)
}

// priceDecimals is the precision a charge advertises: a single decimal is
// widened to two.
func priceDecimals(observed int) int {
	if observed == 1 {
		return 2
	}
	return observed
}
