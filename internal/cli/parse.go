package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Input errors.
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrInvalidDate       = errors.New("invalid date")
)

// DateLayouts are the accepted date input forms, tried in order.
var DateLayouts = []string{"02/01/2006", "2/1/2006", "2006-01-02"}

// CurrencyPrefixes are the symbols ParseAmount drops from the front of its
// input.
var CurrencyPrefixes = []string{"R$", "US$", "$"}

// ParseAmount reads a positive amount typed by a person. It accepts a comma
// or a dot as decimal separator, thousands separators when both are
// present, and an optional currency prefix: one of CurrencyPrefixes or of
// the extra symbols given.
func ParseAmount(s string, currencies ...string) (float64, error) {
	raw := trimCurrency(strings.TrimSpace(s), currencies)
	if raw == "" || !numeric(raw) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	lastComma := strings.LastIndex(raw, ",")
	lastDot := strings.LastIndex(raw, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		// 1.234,56
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		// 1,234.56
		raw = strings.ReplaceAll(raw, ",", "")
	case lastComma >= 0:
		raw = strings.Replace(raw, ",", ".", 1)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: %q", ErrNonPositiveAmount, s)
	}
	return d.InexactFloat64(), nil
}

func trimCurrency(s string, extra []string) string {
	for _, symbol := range append(append([]string{}, extra...), CurrencyPrefixes...) {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" || len(s) < len(symbol) {
			continue
		}
		if strings.EqualFold(s[:len(symbol)], symbol) {
			return strings.TrimSpace(s[len(symbol):])
		}
	}
	return s
}

// numeric reports whether s holds only digits and separators, with an
// optional leading sign.
func numeric(s string) bool {
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
		case i == 0 && (r == '-' || r == '+'):
		default:
			return false
		}
	}
	return true
}

// ParseDate reads a calendar date in the local zone.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (use dd/mm/aaaa)", ErrInvalidDate, s)
}
