// Package viewmodel holds the display state of the terminal application as
// plain data, so rendering and key handling can be tested without a
// terminal.
package viewmodel

import (
	"sort"
	"time"

	"github.com/Veraticus/ledger/internal/balance"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
)

// Mode is what the screen is currently showing on top of the list.
type Mode int

const (
	// ModeList is the transaction table with the balance panel.
	ModeList Mode = iota
	// ModeForm shows the add or edit form.
	ModeForm
	// ModeConfirm asks before deleting the selected row.
	ModeConfirm
	// ModeHelp shows every key binding.
	ModeHelp
)

// StatusKind styles the status bar.
type StatusKind int

const (
	// StatusInfo is a neutral message.
	StatusInfo StatusKind = iota
	// StatusSuccess follows a completed change.
	StatusSuccess
	// StatusError reports a failed operation.
	StatusError
)

// Status is a timed message in the status bar. Seq identifies the message
// so a late clear does not remove a newer one.
type Status struct {
	Text string
	Kind StatusKind
	Seq  int
}

// LedgerView is the state of the main screen.
type LedgerView struct {
	Filter       period.Filter
	Status       Status
	transactions []model.Transaction
	Years        []int
	Summary      balance.Summary
	Cursor       int
	SortBy       SortField
	SortOrder    SortOrder
	Mode         Mode
	Width        int
	Height       int
	Loaded       bool
}

// NewLedgerView returns the initial state: every period, newest first.
func NewLedgerView() LedgerView {
	return LedgerView{
		Filter:    period.All,
		SortBy:    SortByDate,
		SortOrder: SortDescending,
	}
}

// Transactions returns the rows in display order.
func (v *LedgerView) Transactions() []model.Transaction {
	return v.transactions
}

// SetData replaces the rows, balance and known years after a load. The
// cursor stays on the same transaction when it is still present.
func (v *LedgerView) SetData(txns []model.Transaction, summary balance.Summary, years []int) {
	var selectedID int64
	if txn, ok := v.Selected(); ok {
		selectedID = txn.ID
	}

	v.transactions = append([]model.Transaction(nil), txns...)
	v.Summary = summary
	v.Years = append([]int(nil), years...)
	sort.Ints(v.Years)
	v.Loaded = true
	v.applySort()

	v.Cursor = 0
	for i, txn := range v.transactions {
		if txn.ID == selectedID {
			v.Cursor = i
			break
		}
	}
}

// IsEmpty reports whether the period has no transactions.
func (v *LedgerView) IsEmpty() bool {
	return len(v.transactions) == 0
}

// Selected returns the row under the cursor.
func (v *LedgerView) Selected() (model.Transaction, bool) {
	if v.Cursor < 0 || v.Cursor >= len(v.transactions) {
		return model.Transaction{}, false
	}
	return v.transactions[v.Cursor], true
}

// MoveUp moves the cursor one row up, stopping at the first row.
func (v *LedgerView) MoveUp() {
	if v.Cursor > 0 {
		v.Cursor--
	}
}

// MoveDown moves the cursor one row down, stopping at the last row.
func (v *LedgerView) MoveDown() {
	if v.Cursor < len(v.transactions)-1 {
		v.Cursor++
	}
}

// CycleSort advances to the next sort column. Each column starts in its
// natural order: dates and amounts descending, text ascending.
func (v *LedgerView) CycleSort() {
	v.SortBy = (v.SortBy + 1) % sortFieldCount
	v.SortOrder = v.SortBy.defaultOrder()
	v.applySort()
	v.Cursor = 0
}

func (v *LedgerView) applySort() {
	Sort(v.transactions, v.SortBy, v.SortOrder)
}

// NextYear moves the year filter forward through "all years" followed by
// the known years in ascending order, wrapping around.
func (v *LedgerView) NextYear() {
	v.Filter.Year = cycle(v.yearChoices(), v.Filter.Year, 1)
}

// PrevYear moves the year filter backward.
func (v *LedgerView) PrevYear() {
	v.Filter.Year = cycle(v.yearChoices(), v.Filter.Year, -1)
}

func (v *LedgerView) yearChoices() []int {
	return append([]int{0}, v.Years...)
}

// NextMonth moves the month filter through "all months", January ...
// December, wrapping around.
func (v *LedgerView) NextMonth() {
	v.Filter.Month = time.Month((int(v.Filter.Month) + 1) % 13)
}

// PrevMonth moves the month filter backward.
func (v *LedgerView) PrevMonth() {
	v.Filter.Month = time.Month((int(v.Filter.Month) + 12) % 13)
}

// ClearPeriod shows every transaction again.
func (v *LedgerView) ClearPeriod() {
	v.Filter = period.All
}

// SetStatus replaces the status message and returns its sequence number.
func (v *LedgerView) SetStatus(kind StatusKind, text string) int {
	v.Status = Status{Text: text, Kind: kind, Seq: v.Status.Seq + 1}
	return v.Status.Seq
}

// ClearStatus removes the message with sequence seq, if it is still shown.
func (v *LedgerView) ClearStatus(seq int) {
	if v.Status.Seq == seq {
		v.Status.Text = ""
	}
}

// cycle returns the element of choices step positions away from current.
// An unknown current value starts from the first element.
func cycle(choices []int, current, step int) int {
	idx := 0
	for i, c := range choices {
		if c == current {
			idx = i
			break
		}
	}
	n := len(choices)
	return choices[((idx+step)%n+n)%n]
}
