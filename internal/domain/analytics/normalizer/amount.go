// Package normalizer turns raw date and number tokens from spreadsheet exports
// into canonical values. Both parsers are lenient: they never return an error.
package normalizer

import (
	"strconv"
	"strings"
)

// ParseAmount extracts a number from a token such as "$ 1.250", "10,50" or
// "-3 u". Everything except digits, '.', '-' and ',' is dropped, the first ','
// becomes a decimal point, and the longest leading decimal literal is parsed.
// Unparsable input and values beyond float64 range yield 0, so a ledger amount
// is always finite.
//
// "1,234" therefore reads as 1.234: a comma is always taken as a decimal
// separator.
func ParseAmount(token string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' || r == '-' || r == ',' {
			return r
		}
		return -1
	}, token)
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	v, err := strconv.ParseFloat(leadingDecimal(cleaned), 64)
	if err != nil || v == 0 {
		return 0
	}
	return v
}

// leadingDecimal returns the longest prefix of s of the form -?\d*(\.\d*)?
// that contains at least one digit, or "" when there is none.
func leadingDecimal(s string) string {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	end := i
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
		if digits > 0 {
			end = i
		}
	}
	if digits == 0 {
		return ""
	}
	return strings.TrimSuffix(s[:end], ".")
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
