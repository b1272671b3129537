// Package format renders ledger values for people: money, dates, month names
// and period titles.
package format

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
)

var monthNames = [...]string{
	"", "Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthName returns the Portuguese name of m, or "" when m is out of range.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m]
}

// MonthNames returns January through December.
func MonthNames() []string {
	names := make([]string, 12)
	copy(names, monthNames[1:])
	return names
}

// Money formats an amount with two decimals after the currency symbol.
// Negative values keep the sign in front of the symbol: "-R$ 10.00".
func Money(currency string, amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	if d.IsNegative() {
		return fmt.Sprintf("-%s %s", currency, d.Abs().StringFixed(2))
	}
	return fmt.Sprintf("%s %s", currency, d.StringFixed(2))
}

// Net formats a balance, flagging negative values.
func Net(currency string, amount float64) string {
	if amount < 0 && math.Abs(amount) >= 0.005 {
		return Money(currency, amount) + " (Negativo)"
	}
	return Money(currency, math.Abs(amount))
}

// Number formats an amount with two decimals and no symbol.
func Number(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// Date formats t with layout, or "-" for the zero time.
func Date(layout string, t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(layout)
}

// KindLabel is the display name of a transaction kind.
func KindLabel(k model.Kind) string {
	switch k {
	case model.KindIncome:
		return "Ganho"
	case model.KindExpense:
		return "Despesa"
	default:
		return string(k)
	}
}

// Category returns c, or "-" when empty.
func Category(c string) string {
	if c == "" {
		return "-"
	}
	return c
}

// PeriodTitle names the listing shown for f.
func PeriodTitle(f period.Filter) string {
	switch {
	case f.HasYear() && f.HasMonth():
		return fmt.Sprintf("Transações de %s/%d", MonthName(f.Month), f.Year)
	case f.HasYear():
		return fmt.Sprintf("Transações de Todo o Ano de %d", f.Year)
	case f.HasMonth():
		return fmt.Sprintf("Transações de %s (Todos os Anos)", MonthName(f.Month))
	default:
		return "Todas as Transações Registradas"
	}
}

// KindTitle names a listing restricted to one kind.
func KindTitle(k model.Kind) string {
	switch k {
	case model.KindIncome:
		return "Ganhos Registrados"
	case model.KindExpense:
		return "Despesas Registradas"
	default:
		return "Todas as Transações Registradas"
	}
}
