package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/ledger/internal/installment"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
)

// loadTransactions reads the rows, balance and known years for filter.
func (m Model) loadTransactions(filter period.Filter) tea.Cmd {
	ledger, ctx := m.ledger, m.ctx
	return func() tea.Msg {
		if ledger == nil {
			return loadedMsg{filter: filter, err: fmt.Errorf("ledger not configured")}
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		txns, err := ledger.List(ctx, filter)
		if err != nil {
			return loadedMsg{filter: filter, err: err}
		}
		summary, err := ledger.Summarize(ctx, filter)
		if err != nil {
			return loadedMsg{filter: filter, err: err}
		}
		years, err := ledger.Years(ctx)
		if err != nil {
			return loadedMsg{filter: filter, err: err}
		}

		return loadedMsg{
			filter:       filter,
			transactions: txns,
			summary:      summary,
			years:        years,
		}
	}
}

// save sends a validated form to the ledger.
func (m Model) save(req formRequest) tea.Cmd {
	ledger, ctx := m.ledger, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		switch {
		case req.editID != 0:
			err := ledger.Update(ctx, req.editID, model.Update{
				Description: req.description,
				Category:    req.category,
				Amount:      req.amount,
			})
			return savedMsg{err: err, text: fmt.Sprintf("Transação %d atualizada.", req.editID)}

		case req.kind == model.KindIncome:
			id, err := ledger.AddIncome(ctx, req.description, req.amount, req.at)
			return savedMsg{err: err, text: fmt.Sprintf("Ganho registrado (ID %d).", id)}

		case req.count > 1:
			firstDue := req.at
			if firstDue.IsZero() {
				firstDue = time.Now()
			}
			ids, err := ledger.AddInstallments(ctx, installment.Plan{
				Description: req.description,
				Category:    req.category,
				Amount:      req.amount,
				Count:       req.count,
				FirstDue:    firstDue,
			})
			return savedMsg{err: err, text: fmt.Sprintf("%d parcelas registradas.", len(ids))}

		default:
			id, err := ledger.AddExpense(ctx, req.description, req.category, req.amount, req.at)
			return savedMsg{err: err, text: fmt.Sprintf("Despesa registrada (ID %d).", id)}
		}
	}
}

// remove deletes one transaction.
func (m Model) remove(id int64) tea.Cmd {
	ledger, ctx := m.ledger, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		deleted, err := ledger.Delete(ctx, id)
		return deletedMsg{id: id, deleted: deleted, err: err}
	}
}

// clearStatusAfter hides status message seq once the timeout passes.
func (m Model) clearStatusAfter(seq int) tea.Cmd {
	if m.config.StatusTimeout <= 0 {
		return nil
	}
	return tea.Tick(m.config.StatusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
