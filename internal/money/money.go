// Package money parses, sanitizes and formats monetary amounts.
//
// Amounts are shopspring decimals. Stored amounts are never negative; the
// direction of a transaction comes from its type, so parsing rejects signs.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/budget/internal/common"
)

// DefaultSymbol is the currency symbol used when none is configured.
const DefaultSymbol = "$"

// ParseAmount converts user text such as "120.50" into a non-negative decimal.
// Empty, signed or non-numeric input is rejected with common.ErrValidation.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", common.ErrValidation)
	}

	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", common.ErrValidation, s)
		}
	}
	if digits == 0 || dots > 1 {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", common.ErrValidation, s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number: %w", common.ErrValidation, s, err)
	}
	return d, nil
}

// SanitizeAmount strips everything except digits and the decimal point,
// mirroring what the entry form does while the user types ("12a3" -> "123").
func SanitizeAmount(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format renders a value with thousands separators and two decimals.
// Negative values carry the sign before the symbol: -$1,234.56.
func Format(value decimal.Decimal, symbol string) string {
	rounded := value.Round(2)
	abs := rounded.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(abs, ".")
	out := symbol + groupThousands(intPart) + "." + fracPart
	if rounded.IsNegative() {
		return "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
