// Package balance aggregates income and expense totals over a set of
// transactions.
package balance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/model"
)

// Summary holds the totals for a row set. Net is Income minus Expense.
type Summary struct {
	Income  float64
	Expense float64
	Net     float64
	Count   int
}

// IsNegative reports whether more went out than came in.
func (s Summary) IsNegative() bool {
	return s.Net < 0
}

// Summarize totals the given transactions. An empty slice yields zeros.
func Summarize(txns []model.Transaction) Summary {
	income := decimal.Zero
	expense := decimal.Zero

	for _, txn := range txns {
		amount := decimal.NewFromFloat(txn.Amount)
		switch txn.Kind {
		case model.KindIncome:
			income = income.Add(amount)
		case model.KindExpense:
			expense = expense.Add(amount)
		}
	}

	return Summary{
		Income:  income.InexactFloat64(),
		Expense: expense.InexactFloat64(),
		Net:     income.Sub(expense).InexactFloat64(),
		Count:   len(txns),
	}
}

// CategoryTotal is the expense total for a single category.
type CategoryTotal struct {
	Category string
	Total    float64
	Count    int
}

// ByCategory groups expenses by category, largest total first. Incomes are
// ignored.
func ByCategory(txns []model.Transaction) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int)

	for _, txn := range txns {
		if !txn.IsExpense() {
			continue
		}
		totals[txn.Category] = totals[txn.Category].Add(decimal.NewFromFloat(txn.Amount))
		counts[txn.Category]++
	}

	result := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		result = append(result, CategoryTotal{
			Category: category,
			Total:    total.InexactFloat64(),
			Count:    counts[category],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Category < result[j].Category
	})

	return result
}
