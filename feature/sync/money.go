package sync

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPrice is returned when a price cell cannot be normalized to a
// money string.
var ErrInvalidPrice = errors.New("invalid price")

// currencyTokens are stripped from price cells before parsing.
var currencyTokens = []string{"€", "EUR", "eur"}

// NormalizeMoney parses heterogeneous price strings like "6,5", "6.5",
// "1.234,56" or "  12 € " into a canonical money string with a dot
// separator and exactly two fraction digits. When both comma and dot
// appear, the dot is treated as a thousands separator and the comma as the
// decimal marker; a lone comma is a decimal marker. The result is stable
// under renormalization.
func NormalizeMoney(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for _, token := range currencyTokens {
		s = strings.ReplaceAll(s, token, "")
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "'", "")

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	if s == "" {
		return "", fmt.Errorf("%w: empty after cleaning %q", ErrInvalidPrice, raw)
	}

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return fmt.Sprintf("%.2f", amount), nil
}
