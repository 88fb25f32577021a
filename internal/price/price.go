package price

import (
	"regexp"
	"strconv"

	"github.com/pauljones0/price-tracker-bot/internal/models"
)

var nonDigitRegex = regexp.MustCompile(`[^\d]`)

// Normalize converts a raw price string ("₹12,345", "Rs. 999") into whole
// currency units. Every non-digit character is stripped before parsing, so
// thousands separators and currency markers never matter. Empty or entirely
// non-numeric input yields models.PriceUnknown. No decimal handling: the
// storefronts this bot supports list whole-rupee prices.
func Normalize(raw string) int {
	digits := nonDigitRegex.ReplaceAllString(raw, "")
	if digits == "" {
		return models.PriceUnknown
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		// Overflow on absurdly long digit runs; treat as unextractable.
		return models.PriceUnknown
	}
	return n
}

// FormatINR renders a price for user-facing messages, e.g. 1234567 -> "₹12,34,567"
// (Indian digit grouping: last three digits, then groups of two).
func FormatINR(amount int) string {
	if amount == models.PriceUnknown {
		return "Monitoring"
	}
	s := strconv.Itoa(amount)
	if len(s) <= 3 {
		return "₹" + s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var grouped string
	for len(head) > 2 {
		grouped = "," + head[len(head)-2:] + grouped
		head = head[:len(head)-2]
	}
	return "₹" + head + grouped + "," + tail
}
