// Package period normalizes year/month selections into query predicates.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Veraticus/ledger/internal/common"
)

// Filter narrows a query to a year, a month, or both. Zero fields are unset.
type Filter struct {
	Year  int
	Month time.Month
}

// All is the empty filter.
var All = Filter{}

// IsZero reports whether the filter has no bounds.
func (f Filter) IsZero() bool {
	return f.Year == 0 && f.Month == 0
}

// HasYear reports whether a year bound is set.
func (f Filter) HasYear() bool {
	return f.Year != 0
}

// HasMonth reports whether a month bound is set.
func (f Filter) HasMonth() bool {
	return f.Month != 0
}

// Matches reports whether t falls inside the filter.
func (f Filter) Matches(t time.Time) bool {
	if f.HasYear() && t.Year() != f.Year {
		return false
	}
	if f.HasMonth() && t.Month() != f.Month {
		return false
	}
	return true
}

// SQL returns the predicates for column, joined with AND, and their
// arguments. Both are empty for the zero filter.
func (f Filter) SQL(column string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.HasYear() {
		conds = append(conds, fmt.Sprintf("strftime('%%Y', %s) = ?", column))
		args = append(args, fmt.Sprintf("%04d", f.Year))
	}
	if f.HasMonth() {
		conds = append(conds, fmt.Sprintf("strftime('%%m', %s) = ?", column))
		args = append(args, fmt.Sprintf("%02d", int(f.Month)))
	}
	return strings.Join(conds, " AND "), args
}

func (f Filter) String() string {
	switch {
	case f.HasYear() && f.HasMonth():
		return fmt.Sprintf("%04d-%02d", f.Year, int(f.Month))
	case f.HasYear():
		return fmt.Sprintf("%04d", f.Year)
	case f.HasMonth():
		return fmt.Sprintf("*-%02d", int(f.Month))
	default:
		return "all"
	}
}

// New validates explicit bounds. Zero means unset for either value.
func New(year int, month int) (Filter, error) {
	if year != 0 && (year < 1000 || year > 9999) {
		return Filter{}, &common.InvalidPeriodError{Field: "year", Token: strconv.Itoa(year)}
	}
	if month < 0 || month > 12 {
		return Filter{}, &common.InvalidPeriodError{Field: "month", Token: strconv.Itoa(month)}
	}
	return Filter{Year: year, Month: time.Month(month)}, nil
}

// Parse turns raw year and month tokens into a Filter. Blank tokens are
// treated as absent; a token that is present but unparsable is an error.
func Parse(yearToken, monthToken string) (Filter, error) {
	var f Filter

	if y := strings.TrimSpace(yearToken); y != "" {
		year, err := ParseYear(y)
		if err != nil {
			return Filter{}, err
		}
		f.Year = year
	}

	if m := strings.TrimSpace(monthToken); m != "" {
		month, err := ParseMonth(m)
		if err != nil {
			return Filter{}, err
		}
		f.Month = month
	}

	return f, nil
}

// ParseYear accepts exactly four digits.
func ParseYear(token string) (int, error) {
	token = strings.TrimSpace(token)
	if len(token) != 4 {
		return 0, &common.InvalidPeriodError{Field: "year", Token: token}
	}
	year, err := strconv.Atoi(token)
	if err != nil || year < 1000 {
		return 0, &common.InvalidPeriodError{Field: "year", Token: token}
	}
	return year, nil
}

// ParseMonth accepts 1-12 (optionally zero padded) or a month name.
func ParseMonth(token string) (time.Month, error) {
	token = strings.TrimSpace(token)
	if n, err := strconv.Atoi(token); err == nil {
		if n < 1 || n > 12 {
			return 0, &common.InvalidPeriodError{Field: "month", Token: token}
		}
		return time.Month(n), nil
	}

	if m, ok := monthNames[foldName(token)]; ok {
		return m, nil
	}
	return 0, &common.InvalidPeriodError{Field: "month", Token: token}
}

var monthNames = func() map[string]time.Month {
	names := map[string]time.Month{
		"janeiro": time.January, "fevereiro": time.February, "marco": time.March,
		"abril": time.April, "maio": time.May, "junho": time.June,
		"julho": time.July, "agosto": time.August, "setembro": time.September,
		"outubro": time.October, "novembro": time.November, "dezembro": time.December,
	}
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		names[full] = m
		names[full[:3]] = m
	}
	return names
}()

// foldName lowercases and strips the accents that appear in Portuguese month
// names.
func foldName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case 'á', 'à', 'â', 'ã':
			r = 'a'
		case 'ç':
			r = 'c'
		case 'é', 'ê':
			r = 'e'
		}
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
