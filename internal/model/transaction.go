package model

import (
	"fmt"
	"strings"
	"time"
)

// Kind distinguishes money coming in from money going out.
type Kind string

// Transaction kinds.
const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// ParseKind accepts the stored names plus the Portuguese labels used by the
// front-ends ("ganho", "despesa").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "ganho", "ganhos":
		return KindIncome, nil
	case "expense", "despesa", "despesas":
		return KindExpense, nil
	default:
		return "", fmt.Errorf("unknown transaction kind %q", s)
	}
}

// Transaction is a single ledger row.
type Transaction struct {
	RecordedAt  time.Time
	Kind        Kind
	Description string
	Category    string // empty for income
	ID          int64
	Amount      float64
}

// IsExpense reports whether the transaction is an expense.
func (t Transaction) IsExpense() bool {
	return t.Kind == KindExpense
}

// SignedAmount returns the amount with expenses negated.
func (t Transaction) SignedAmount() float64 {
	if t.IsExpense() {
		return -t.Amount
	}
	return t.Amount
}

// NewTransaction is a request to create a ledger row. A zero RecordedAt is
// replaced with the current time by the store.
type NewTransaction struct {
	RecordedAt  time.Time
	Kind        Kind
	Description string
	Category    string
	Amount      float64
}

// Update carries the editable fields of a transaction. Kind and RecordedAt are
// fixed at creation.
type Update struct {
	Description string
	Category    string
	Amount      float64
}
