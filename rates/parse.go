package rates

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const placeholder = "-"

var codeRegex = regexp.MustCompile(`[A-Z]{3}`)

// ParseRate parses a raw rate cell. Missing, blank and malformed
// values are reported as absent, never as an error
func ParseRate(raw *string) (float64, bool) {
	if raw == nil {
		return 0, false
	}

	d, ok := parseDecimal(*raw)
	if !ok {
		return 0, false
	}

	return d.InexactFloat64(), true
}

// ParseRateString is ParseRate for a plain string
func ParseRateString(raw string) (float64, bool) {
	return ParseRate(&raw)
}

// parseDecimal strips thousands separators and parses the value
func parseDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}

// CleanCell normalizes a raw table cell, empty and placeholder text is absent
func CleanCell(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" || s == placeholder {
		return nil
	}

	return &s
}

// ExtractCode extracts the 3-letter currency code from the label,
// falling back to the full label
func ExtractCode(label string) string {
	if code := codeRegex.FindString(label); code != "" {
		return code
	}

	return label
}
