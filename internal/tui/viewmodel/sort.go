package viewmodel

import (
	"sort"
	"strings"

	"github.com/Veraticus/ledger/internal/model"
)

// SortField represents the column to sort by.
type SortField int

const (
	// SortByDate sorts transactions by recording time.
	SortByDate SortField = iota
	// SortByDescription sorts transactions by description.
	SortByDescription
	// SortByAmount sorts transactions by amount.
	SortByAmount
	// SortByKind groups incomes before expenses.
	SortByKind

	sortFieldCount
)

// SortOrder represents sort direction.
type SortOrder int

const (
	// SortAscending sorts in ascending order.
	SortAscending SortOrder = iota
	// SortDescending sorts in descending order.
	SortDescending
)

// String is the column label shown in the header.
func (f SortField) String() string {
	switch f {
	case SortByDate:
		return "data"
	case SortByDescription:
		return "descrição"
	case SortByAmount:
		return "valor"
	case SortByKind:
		return "tipo"
	default:
		return "?"
	}
}

func (f SortField) defaultOrder() SortOrder {
	if f == SortByDate || f == SortByAmount {
		return SortDescending
	}
	return SortAscending
}

// Sort orders txns in place. Ties keep newest first, then highest id.
func Sort(txns []model.Transaction, field SortField, order SortOrder) {
	sort.SliceStable(txns, func(i, j int) bool {
		a, b := txns[i], txns[j]
		c := compare(a, b, field)
		if c == 0 {
			if !a.RecordedAt.Equal(b.RecordedAt) {
				return a.RecordedAt.After(b.RecordedAt)
			}
			return a.ID > b.ID
		}
		if order == SortDescending {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b model.Transaction, field SortField) int {
	switch field {
	case SortByDescription:
		return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
	case SortByAmount:
		switch {
		case a.Amount < b.Amount:
			return -1
		case a.Amount > b.Amount:
			return 1
		}
		return 0
	case SortByKind:
		return strings.Compare(kindRank(a.Kind), kindRank(b.Kind))
	default:
		return a.RecordedAt.Compare(b.RecordedAt)
	}
}

func kindRank(k model.Kind) string {
	if k == model.KindIncome {
		return "0"
	}
	return "1"
}
