package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var priceNoise = regexp.MustCompile(`[^0-9,.\-]`)

// CleanText collapses whitespace runs into single spaces and trims the result
func CleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// ParsePrice turns raw price text such as "12,50 €" or "$1,234.56" into a number.
//
// Everything except digits, commas, dots and minus signs is stripped. The last
// separator is taken as the decimal separator and any earlier separators are
// treated as thousands separators. Text that cannot be parsed yields 0, and so
// do negative or non-finite results.
func ParsePrice(raw string) float64 {
	cleaned := priceNoise.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0
	}

	if idx := strings.LastIndexAny(cleaned, ",."); idx >= 0 {
		whole := strings.NewReplacer(",", "", ".", "").Replace(cleaned[:idx])
		fraction := cleaned[idx+1:]
		cleaned = whole + "." + fraction
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return SanitizePrice(value)
}

// SanitizePrice clamps a price to a non-negative finite value
func SanitizePrice(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}
