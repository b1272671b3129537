package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Period
	NextYear    key.Binding
	PrevYear    key.Binding
	NextMonth   key.Binding
	PrevMonth   key.Binding
	ClearPeriod key.Binding
	Sort        key.Binding

	// Actions
	AddIncome  key.Binding
	AddExpense key.Binding
	Edit       key.Binding
	Delete     key.Binding
	Reload     key.Binding

	// Form
	Submit             key.Binding
	Cancel             key.Binding
	NextField          key.Binding
	PrevField          key.Binding
	ToggleInstallments key.Binding

	// Confirmation
	Confirm key.Binding
	Deny    key.Binding

	// Application
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),

		NextYear: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y/Y", "year"),
		),
		PrevYear: key.NewBinding(
			key.WithKeys("Y"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m/M", "month"),
		),
		PrevMonth: key.NewBinding(
			key.WithKeys("M"),
		),
		ClearPeriod: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "all periods"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),

		AddIncome: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "add income"),
		),
		AddExpense: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add expense"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "reload"),
		),

		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("Tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("Shift+Tab", "previous field"),
		),
		ToggleInstallments: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("Ctrl+P", "installments"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("s", "y", "enter"),
			key.WithHelp("s", "confirm"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "keep"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.AddIncome, k.AddExpense, k.Edit, k.Delete, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Sort, k.Reload},
		{k.NextYear, k.NextMonth, k.ClearPeriod},
		{k.AddIncome, k.AddExpense, k.Edit, k.Delete},
		{k.Submit, k.Cancel, k.NextField, k.ToggleInstallments},
		{k.Help, k.Quit},
	}
}

// FormHelp returns the bindings shown under the form.
func (k KeyMap) FormHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel, k.NextField, k.ToggleInstallments}
}
