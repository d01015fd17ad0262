package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Thousands separators and currency marks a user may type into the price field.
var priceNoiseRe = regexp.MustCompile(`[,\s₩원]`)

// Price converts the form's price text into an amount.
// Text that is not a finite, non-negative number yields 0.
func Price(raw string) float64 {
	s := priceNoiseRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// FormatPrice renders an amount for the form buffer. Zero and negative
// amounts render as an empty field.
func FormatPrice(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
