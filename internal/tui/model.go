// Package tui implements the terminal form application: a transaction table
// for the active period, a balance panel and add/edit forms.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/format"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/tui/themes"
	"github.com/Veraticus/ledger/internal/tui/viewmodel"
)

// Model holds the main TUI state.
type Model struct {
	ctx           context.Context
	ledger        Ledger
	theme         themes.Theme
	help          help.Model
	table         table.Model
	form          formModel
	pendingDelete model.Transaction
	keymap        KeyMap
	config        Config
	view          viewmodel.LedgerView
	quitting      bool
}

// New creates the application model.
func New(ctx context.Context, cfg Config) Model {
	m := Model{
		ctx:    ctx,
		ledger: cfg.Ledger,
		theme:  cfg.Theme,
		config: cfg,
		keymap: DefaultKeyMap(),
		help:   help.New(),
		view:   viewmodel.NewLedgerView(),
	}
	m.view.Width = cfg.Width
	m.view.Height = cfg.Height

	styles := table.DefaultStyles()
	styles.Header = cfg.Theme.Header
	styles.Selected = cfg.Theme.Selected
	m.table = table.New(
		table.WithColumns(columns(cfg.Width)),
		table.WithFocused(true),
		table.WithStyles(styles),
		table.WithHeight(tableHeight(cfg.Height)),
	)
	return m
}

// ViewState returns the display state.
func (m Model) ViewState() viewmodel.LedgerView {
	return m.view
}

// Init loads the first page of data.
func (m Model) Init() tea.Cmd {
	return m.loadTransactions(m.view.Filter)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Width = msg.Width
		m.view.Height = msg.Height
		m.table.SetColumns(columns(msg.Width))
		m.table.SetHeight(tableHeight(msg.Height))
		m.help.Width = msg.Width
		m.syncTable()
		return m, nil

	case loadedMsg:
		if msg.filter != m.view.Filter {
			// stale response for a period the user already left
			return m, nil
		}
		if msg.err != nil {
			cmd := m.setStatus(viewmodel.StatusError, cli.Describe(msg.err))
			return m, cmd
		}
		m.view.SetData(msg.transactions, msg.summary, msg.years)
		m.syncTable()
		return m, nil

	case savedMsg:
		if msg.err != nil {
			if m.view.Mode == viewmodel.ModeForm {
				m.form.err = cli.Describe(msg.err)
				return m, nil
			}
			cmd := m.setStatus(viewmodel.StatusError, cli.Describe(msg.err))
			return m, cmd
		}
		m.view.Mode = viewmodel.ModeList
		cmd := m.setStatus(viewmodel.StatusSuccess, msg.text)
		return m, tea.Batch(cmd, m.loadTransactions(m.view.Filter))

	case deletedMsg:
		var cmd tea.Cmd
		switch {
		case msg.err != nil:
			cmd = m.setStatus(viewmodel.StatusError, cli.Describe(msg.err))
			return m, cmd
		case !msg.deleted:
			cmd = m.setStatus(viewmodel.StatusError, fmt.Sprintf("Transação %d não encontrada.", msg.id))
		default:
			cmd = m.setStatus(viewmodel.StatusSuccess, fmt.Sprintf("Transação %d excluída.", msg.id))
		}
		return m, tea.Batch(cmd, m.loadTransactions(m.view.Filter))

	case clearStatusMsg:
		m.view.ClearStatus(msg.seq)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.view.Mode {
	case viewmodel.ModeForm:
		return m.handleFormKey(msg)
	case viewmodel.ModeConfirm:
		return m.handleConfirmKey(msg)
	case viewmodel.ModeHelp:
		if key.Matches(msg, m.keymap.Help, m.keymap.Cancel, m.keymap.Quit) {
			m.view.Mode = viewmodel.ModeList
		}
		return m, nil
	}

	keys := m.keymap
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.view.Mode = viewmodel.ModeHelp
	case key.Matches(msg, keys.Up):
		m.view.MoveUp()
		m.table.SetCursor(m.view.Cursor)
	case key.Matches(msg, keys.Down):
		m.view.MoveDown()
		m.table.SetCursor(m.view.Cursor)
	case key.Matches(msg, keys.Sort):
		m.view.CycleSort()
		m.syncTable()
	case key.Matches(msg, keys.NextYear):
		m.view.NextYear()
		return m, m.loadTransactions(m.view.Filter)
	case key.Matches(msg, keys.PrevYear):
		m.view.PrevYear()
		return m, m.loadTransactions(m.view.Filter)
	case key.Matches(msg, keys.NextMonth):
		m.view.NextMonth()
		return m, m.loadTransactions(m.view.Filter)
	case key.Matches(msg, keys.PrevMonth):
		m.view.PrevMonth()
		return m, m.loadTransactions(m.view.Filter)
	case key.Matches(msg, keys.ClearPeriod):
		m.view.ClearPeriod()
		return m, m.loadTransactions(m.view.Filter)
	case key.Matches(msg, keys.Reload):
		return m, m.loadTransactions(m.view.Filter)
	case key.Matches(msg, keys.AddIncome):
		m.form = newAddForm(model.KindIncome)
		m.view.Mode = viewmodel.ModeForm
	case key.Matches(msg, keys.AddExpense):
		m.form = newAddForm(model.KindExpense)
		m.view.Mode = viewmodel.ModeForm
	case key.Matches(msg, keys.Edit):
		txn, ok := m.view.Selected()
		if !ok {
			cmd := m.setStatus(viewmodel.StatusInfo, "Nenhuma transação selecionada.")
			return m, cmd
		}
		m.form = newEditForm(txn)
		m.view.Mode = viewmodel.ModeForm
	case key.Matches(msg, keys.Delete):
		txn, ok := m.view.Selected()
		if !ok {
			cmd := m.setStatus(viewmodel.StatusInfo, "Nenhuma transação selecionada.")
			return m, cmd
		}
		m.pendingDelete = txn
		m.view.Mode = viewmodel.ModeConfirm
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form, action, cmd := m.form.Update(msg, m.keymap)
	m.form = form

	switch action {
	case formCancel:
		m.view.Mode = viewmodel.ModeList
		return m, nil
	case formSubmit:
		req, err := m.form.request(m.config.Currency)
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		return m, m.save(req)
	}
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Confirm):
		m.view.Mode = viewmodel.ModeList
		return m, m.remove(m.pendingDelete.ID)
	case key.Matches(msg, m.keymap.Deny):
		m.view.Mode = viewmodel.ModeList
		cmd := m.setStatus(viewmodel.StatusInfo, "Exclusão cancelada.")
		return m, cmd
	}
	return m, nil
}

func (m *Model) setStatus(kind viewmodel.StatusKind, text string) tea.Cmd {
	seq := m.view.SetStatus(kind, text)
	return m.clearStatusAfter(seq)
}

// syncTable copies the view-model rows and cursor into the table widget.
func (m *Model) syncTable() {
	txns := m.view.Transactions()
	rows := make([]table.Row, len(txns))
	for i, txn := range txns {
		rows[i] = table.Row{
			fmt.Sprintf("%d", txn.ID),
			format.Date(m.config.DateLayout, txn.RecordedAt),
			format.KindLabel(txn.Kind),
			txn.Description,
			format.Number(txn.Amount),
			format.Category(txn.Category),
		}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(m.view.Cursor)
}

func columns(width int) []table.Column {
	// fixed columns take 50 cells, description gets the rest
	desc := width - 50 - 8
	if desc < 16 {
		desc = 16
	}
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Data", Width: 10},
		{Title: "Tipo", Width: 8},
		{Title: "Descrição", Width: desc},
		{Title: "Valor", Width: 11},
		{Title: "Categoria", Width: 16},
	}
}

func tableHeight(height int) int {
	// header, balance panel, status and help take about 12 lines
	if h := height - 12; h > 3 {
		return h
	}
	return 3
}
