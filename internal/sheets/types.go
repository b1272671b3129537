package sheets

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/balance"
	"github.com/Veraticus/ledger/internal/format"
	"github.com/Veraticus/ledger/internal/model"
)

// TransactionRow is a single row of the transaction detail section. Expenses
// carry a negative amount.
type TransactionRow struct {
	Date        time.Time
	Amount      decimal.Decimal
	Kind        string
	Description string
	Category    string
	ID          int64
}

// CategoryRow is a single row of the expense breakdown.
type CategoryRow struct {
	Category string
	Total    decimal.Decimal
	Count    int
}

func newTransactionRow(txn model.Transaction) TransactionRow {
	return TransactionRow{
		ID:          txn.ID,
		Date:        txn.RecordedAt,
		Kind:        format.KindLabel(txn.Kind),
		Description: txn.Description,
		Category:    format.Category(txn.Category),
		Amount:      cents(txn.SignedAmount()),
	}
}

func newCategoryRows(txns []model.Transaction) []CategoryRow {
	totals := balance.ByCategory(txns)
	rows := make([]CategoryRow, len(totals))
	for i, total := range totals {
		rows[i] = CategoryRow{
			Category: total.Category,
			Total:    cents(total.Total),
			Count:    total.Count,
		}
	}
	return rows
}

// Dates go out as ISO text so USER_ENTERED input turns them into date cells.
func (r TransactionRow) values() []any {
	return []any{
		r.Date.Format("2006-01-02"),
		r.Kind,
		r.Description,
		r.Category,
		r.Amount.InexactFloat64(),
	}
}

func (r CategoryRow) values() []any {
	return []any{r.Category, r.Count, r.Total.InexactFloat64()}
}

func cents(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}

// moneyColumn marks rows [from, to) of column col as currency cells.
type moneyColumn struct {
	col, from, to int
}

// layout is the cell grid of one report tab and the positions its
// formatting needs.
type layout struct {
	values   [][]any
	headings []int
	money    []moneyColumn
}

func (l *layout) add(rows ...[]any) int {
	start := len(l.values)
	l.values = append(l.values, rows...)
	return start
}

func (l *layout) heading(cells ...any) {
	l.headings = append(l.headings, l.add(cells))
}
