package viewmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger/internal/balance"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 12, 0, 0, 0, time.Local)
}

func sample() []model.Transaction {
	return []model.Transaction{
		{ID: 1, Kind: model.KindIncome, Description: "salário", Amount: 3000, RecordedAt: day(5)},
		{ID: 2, Kind: model.KindExpense, Description: "Aluguel", Category: "Casa", Amount: 1500, RecordedAt: day(10)},
		{ID: 3, Kind: model.KindExpense, Description: "Cinema", Category: "Lazer", Amount: 40, RecordedAt: day(10)},
		{ID: 4, Kind: model.KindIncome, Description: "Bônus", Amount: 500, RecordedAt: day(1)},
	}
}

func ids(txns []model.Transaction) []int64 {
	out := make([]int64, len(txns))
	for i, txn := range txns {
		out[i] = txn.ID
	}
	return out
}

func TestSort(t *testing.T) {
	tests := []struct {
		name  string
		field SortField
		order SortOrder
		want  []int64
	}{
		{"date newest first, ties by id", SortByDate, SortDescending, []int64{3, 2, 1, 4}},
		{"date oldest first", SortByDate, SortAscending, []int64{4, 1, 3, 2}},
		{"description case-insensitive", SortByDescription, SortAscending, []int64{2, 4, 3, 1}},
		{"amount highest first", SortByAmount, SortDescending, []int64{1, 2, 4, 3}},
		{"kind incomes first", SortByKind, SortAscending, []int64{1, 4, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns := sample()
			Sort(txns, tt.field, tt.order)
			assert.Equal(t, tt.want, ids(txns))
		})
	}
}

func TestLedgerView_CycleSort(t *testing.T) {
	v := NewLedgerView()
	v.SetData(sample(), balance.Summary{}, nil)
	assert.Equal(t, []int64{3, 2, 1, 4}, ids(v.Transactions()))

	v.MoveDown()
	v.CycleSort()
	assert.Equal(t, SortByDescription, v.SortBy)
	assert.Equal(t, SortAscending, v.SortOrder)
	assert.Equal(t, 0, v.Cursor)

	v.CycleSort()
	v.CycleSort()
	v.CycleSort()
	assert.Equal(t, SortByDate, v.SortBy, "wraps around")
	assert.Equal(t, SortDescending, v.SortOrder)
}

func TestLedgerView_Cursor(t *testing.T) {
	v := NewLedgerView()
	_, ok := v.Selected()
	assert.False(t, ok)
	assert.True(t, v.IsEmpty())

	v.SetData(sample(), balance.Summary{}, nil)
	v.MoveUp()
	assert.Equal(t, 0, v.Cursor)

	for i := 0; i < 10; i++ {
		v.MoveDown()
	}
	assert.Equal(t, 3, v.Cursor)

	v.Cursor = 1
	selected, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(2), selected.ID)

	// reload keeps the same row selected
	rows := sample()[1:]
	v.SetData(rows, balance.Summary{}, nil)
	selected, ok = v.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(2), selected.ID)

	v.SetData(nil, balance.Summary{}, nil)
	assert.Equal(t, 0, v.Cursor)
	_, ok = v.Selected()
	assert.False(t, ok)
}

func TestLedgerView_YearCycle(t *testing.T) {
	v := NewLedgerView()
	v.SetData(nil, balance.Summary{}, []int{2024, 2023})

	v.NextYear()
	assert.Equal(t, 2023, v.Filter.Year)
	v.NextYear()
	assert.Equal(t, 2024, v.Filter.Year)
	v.NextYear()
	assert.Equal(t, 0, v.Filter.Year)

	v.PrevYear()
	assert.Equal(t, 2024, v.Filter.Year)

	// no years recorded: stays on all
	empty := NewLedgerView()
	empty.NextYear()
	assert.Equal(t, period.All, empty.Filter)
}

func TestLedgerView_MonthCycle(t *testing.T) {
	v := NewLedgerView()

	v.NextMonth()
	assert.Equal(t, time.January, v.Filter.Month)

	v.PrevMonth()
	assert.Equal(t, time.Month(0), v.Filter.Month)
	v.PrevMonth()
	assert.Equal(t, time.December, v.Filter.Month)
	v.NextMonth()
	assert.Equal(t, time.Month(0), v.Filter.Month)

	v.Filter = period.Filter{Year: 2024, Month: time.May}
	v.ClearPeriod()
	assert.True(t, v.Filter.IsZero())
}

func TestLedgerView_Status(t *testing.T) {
	v := NewLedgerView()

	first := v.SetStatus(StatusSuccess, "salvo")
	second := v.SetStatus(StatusError, "falhou")

	v.ClearStatus(first)
	assert.Equal(t, "falhou", v.Status.Text, "stale clear keeps the newer message")

	v.ClearStatus(second)
	assert.Empty(t, v.Status.Text)
}
