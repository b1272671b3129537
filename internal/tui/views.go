package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/ledger/internal/format"
	"github.com/Veraticus/ledger/internal/tui/viewmodel"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.view.Loaded {
		return m.renderStatus() + "\nCarregando transações..."
	}

	sections := []string{m.renderHeader(), m.renderBody(), m.renderBalance()}

	switch m.view.Mode {
	case viewmodel.ModeForm:
		sections = append(sections, m.form.View(m.theme), m.help.ShortHelpView(m.keymap.FormHelp()))
	case viewmodel.ModeConfirm:
		sections = append(sections, m.renderConfirm())
	case viewmodel.ModeHelp:
		sections = append(sections, m.help.FullHelpView(m.keymap.FullHelp()))
	default:
		sections = append(sections, m.renderStatus(), m.help.ShortHelpView(m.keymap.ShortHelp()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("💰 " + format.PeriodTitle(m.view.Filter))

	order := "↓"
	if m.view.SortOrder == viewmodel.SortAscending {
		order = "↑"
	}
	sub := m.theme.Subtitle.Render(fmt.Sprintf("%d transações · ordenado por %s %s",
		len(m.view.Transactions()), m.view.SortBy, order))

	return lipgloss.JoinVertical(lipgloss.Left, title, sub, "")
}

func (m Model) renderBody() string {
	if m.view.IsEmpty() {
		return m.theme.Subtitle.Render("Nenhuma transação encontrada.") + "\n"
	}
	return m.table.View()
}

func (m Model) renderBalance() string {
	s := m.view.Summary
	cur := m.config.Currency

	net := format.Net(cur, s.Net)
	if s.IsNegative() {
		net = m.theme.Negative.Render(net)
	} else {
		net = m.theme.Positive.Render(net)
	}

	lines := []string{
		fmt.Sprintf("Ganhos:   %s", m.theme.Income.Render(format.Money(cur, s.Income))),
		fmt.Sprintf("Despesas: %s", m.theme.Expense.Render(format.Money(cur, s.Expense))),
		fmt.Sprintf("Saldo:    %s", net),
	}
	return m.theme.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) renderConfirm() string {
	txn := m.pendingDelete
	question := fmt.Sprintf("Excluir a transação %d '%s' (%s)? (s/n)",
		txn.ID, txn.Description, format.Money(m.config.Currency, txn.Amount))
	return m.theme.Panel.Render(m.theme.StatusError.Render(question))
}

func (m Model) renderStatus() string {
	status := m.view.Status
	if status.Text == "" {
		return ""
	}
	switch status.Kind {
	case viewmodel.StatusError:
		return m.theme.StatusError.Render("✗ " + status.Text)
	case viewmodel.StatusSuccess:
		return m.theme.StatusSuccess.Render("✓ " + status.Text)
	default:
		return m.theme.StatusInfo.Render(status.Text)
	}
}
