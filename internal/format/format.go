// Package format renders monetary values, unit counts and dates the way
// they appear on printed statements.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout used for every date printed in a statement table.
const DateLayout = "2006-01-02"

// Amount rounds v to two places, half away from zero, and renders it with
// comma thousands separators: 1234567.005 -> "1,234,567.01".
//
// Callers pass magnitudes; withdrawals and tax are shown unsigned.
func Amount(v float64) string {
	return Places(v, 2)
}

// Whole rounds v to whole units before rendering it with two fraction
// digits: 1234.56 -> "1,235.00".
func Whole(v float64) string {
	return Decimal(decimal.NewFromFloat(v).Round(0))
}

// Places renders v with exactly places fraction digits.
func Places(v float64, places int32) string {
	return DecimalPlaces(decimal.NewFromFloat(v), places)
}

// Decimal renders d with two fraction digits.
func Decimal(d decimal.Decimal) string {
	return DecimalPlaces(d, 2)
}

// DecimalPlaces renders d with exactly places fraction digits.
func DecimalPlaces(d decimal.Decimal, places int32) string {
	return group(d.StringFixed(places))
}

// Date renders t as YYYY-MM-DD.
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// group inserts a comma every three digits left of the decimal point of a
// plain decimal string such as "-1234567.01".
func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return sign + s
	}

	var b strings.Builder
	b.Grow(len(s) + len(intPart)/3 + 1)
	b.WriteString(sign)

	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
