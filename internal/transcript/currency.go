package transcript

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR renders an amount with the rupee symbol and Indian digit
// grouping: the last three integer digits, then pairs ("₹12,34,567").
// Whole amounts drop the fraction.
func FormatINR(amount decimal.Decimal) string {
	return "₹" + groupINR(amount)
}

// FormatINRWords renders the amount with an ASCII prefix for media that
// cannot encode the rupee symbol, such as core-font PDFs.
func FormatINRWords(amount decimal.Decimal) string {
	return "Rs. " + groupINR(amount)
}

func groupINR(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	abs := amount.Abs()

	var fraction string
	if !abs.Equal(abs.Truncate(0)) {
		fixed := abs.StringFixed(2)
		if i := strings.IndexByte(fixed, '.'); i >= 0 {
			fraction = fixed[i:]
		}
	}

	digits := abs.Truncate(0).String()
	grouped := groupIndianDigits(digits)
	if neg {
		grouped = "-" + grouped
	}
	return grouped + fraction
}

func groupIndianDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}
