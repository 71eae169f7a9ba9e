package ups

import (
	"strings"
	"unicode/utf8"
)

// Field length limits in bytes.
const (
	maxNameLength               = 35
	maxTaxIDLength              = 15
	maxEmailLength              = 50
	maxPhoneLength              = 15
	maxAddressLineLength        = 35
	maxCityLength               = 30
	maxPostalCodeLength         = 9
	maxProductDescriptionLength = 35
	maxDescriptionLength        = 50
	maxReferenceLength          = 35
)

// LimitLength cuts s to at most n bytes without splitting a UTF-8 sequence.
func LimitLength(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// formatPhone keeps the digits of a phone number.
func formatPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// addressLines returns the street lines with the supplement first, as UPS
// prints them top to bottom.
func addressLines(line1, line2 string) []string {
	lines := make([]string, 0, 2)
	if line2 != "" {
		lines = append(lines, LimitLength(line2, maxAddressLineLength))
	}
	if line1 != "" {
		lines = append(lines, LimitLength(line1, maxAddressLineLength))
	}
	return lines
}
