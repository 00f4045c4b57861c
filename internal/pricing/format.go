package pricing

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	CurrencySymbol = "₹"
	rangeSeparator = "–"
)

// FormatPriceRange renders "₹999" when both bounds match and "₹1,200–₹1,500"
// otherwise, with Indian digit grouping.
func FormatPriceRange(r PriceRange) string {
	if r.Min == r.Max {
		return FormatRupees(r.Min)
	}
	return FormatRupees(r.Min) + rangeSeparator + FormatRupees(r.Max)
}

// FormatRupees formats an amount like "₹12,34,567": the last three digits form
// one group and the rest are grouped in pairs.
func FormatRupees(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatInt(amount, 10)
	prefix := CurrencySymbol
	if neg {
		prefix = "-" + CurrencySymbol
	}
	if len(s) <= 3 {
		return prefix + s
	}

	head, tail := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	b.Grow(len(s) + len(s)/2 + len(prefix))
	b.WriteString(prefix)

	rem := len(head) % 2
	if rem == 1 {
		b.WriteString(head[:1])
	}
	for i := rem; i < len(head); i += 2 {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(head[i : i+2])
	}
	b.WriteByte(',')
	b.WriteString(tail)

	return b.String()
}

// ParsePriceRange reads back the output of FormatPriceRange.
func ParsePriceRange(s string) (PriceRange, error) {
	lo, hi, found := strings.Cut(strings.TrimSpace(s), rangeSeparator)

	min, err := parseRupees(lo)
	if err != nil {
		return PriceRange{}, fmt.Errorf("parse price range %q: %w", s, err)
	}
	if !found {
		return PriceRange{Min: min, Max: min}, nil
	}

	max, err := parseRupees(hi)
	if err != nil {
		return PriceRange{}, fmt.Errorf("parse price range %q: %w", s, err)
	}
	return PriceRange{Min: min, Max: max}, nil
}

func parseRupees(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, CurrencySymbol)
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return v, nil
}
