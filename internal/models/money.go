package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePriceCents converts a decimal price string ("12.50", "12.5",
// "12") into integer minor-currency units without going through
// floating point, so the conversion is exact and round-trip-safe.
// More than two decimal places or a malformed value is an error.
func ParsePriceCents(input string) (int64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, fmt.Errorf("price is empty")
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	whole := s
	frac := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole = s[:idx]
		frac = s[idx+1:]
	}

	if whole == "" && frac == "" {
		return 0, fmt.Errorf("malformed price %q", input)
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("price %q has more than two decimal places", input)
	}
	// Digits only from here: ParseInt alone would accept a stray sign
	// inside the fraction ("12.-5") and yield a wrong amount.
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, fmt.Errorf("malformed price %q", input)
	}
	// Pad so "12.5" means 12.50, not 12.05.
	for len(frac) < 2 {
		frac += "0"
	}

	wholeVal, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed price %q", input)
	}
	fracVal, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed price %q", input)
	}

	cents := wholeVal*100 + fracVal
	if negative {
		cents = -cents
	}
	return cents, nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatCents renders minor-currency units as a decimal string with
// exactly two decimal places (1250 -> "12.50").
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
