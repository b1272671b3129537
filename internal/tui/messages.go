package tui

import (
	"github.com/Veraticus/ledger/internal/balance"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
)

// Data loading messages.
type loadedMsg struct {
	err          error
	filter       period.Filter
	transactions []model.Transaction
	years        []int
	summary      balance.Summary
}

// Change results.
type savedMsg struct {
	err  error
	text string
}

type deletedMsg struct {
	err     error
	id      int64
	deleted bool
}

type clearStatusMsg struct {
	seq int
}
