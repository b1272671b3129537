// Package cli holds the console front-end: styled output, input parsing,
// fixed-width tables and the interactive menu.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/ledger/internal/format"
	"github.com/Veraticus/ledger/internal/model"
)

// Palette. Income and positive balances share the green, expenses and
// negative balances the red.
var (
	accentColor   = lipgloss.Color("#4ECDC4")
	positiveColor = lipgloss.Color("#7BC950")
	warningColor  = lipgloss.Color("#FFE66D")
	negativeColor = lipgloss.Color("#FF6B6B")
	infoColor     = lipgloss.Color("#95E1D3")
	subtleColor   = lipgloss.Color("#666666")
)

var (
	// TitleStyle renders section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	// SuccessStyle renders confirmations and non-negative balances.
	SuccessStyle = lipgloss.NewStyle().Foreground(positiveColor)
	// ErrorStyle renders errors and negative balances.
	ErrorStyle = lipgloss.NewStyle().Foreground(negativeColor)
	// InfoStyle renders neutral notices.
	InfoStyle = lipgloss.NewStyle().Foreground(infoColor)
	// SubtleStyle renders empty-state and secondary text.
	SubtleStyle = lipgloss.NewStyle().Foreground(subtleColor)
	// TableHeaderStyle renders table column headers.
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	incomeStyle  = lipgloss.NewStyle().Foreground(positiveColor)
	expenseStyle = lipgloss.NewStyle().Foreground(negativeColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	LedgerIcon  = "💰"
)

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError prefixes message with a cross.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

func FormatWarning(message string) string {
	return warningStyle.Render(WarningIcon + " " + message)
}

func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle renders "--- title ---", the heading used above listings and
// balances.
func FormatTitle(title string) string {
	return TitleStyle.Render("--- " + title + " ---")
}

// FormatPrompt renders "prompt: " for interactive questions.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt+":") + " "
}

// FormatKind renders the Portuguese kind label in the kind's color.
func FormatKind(k model.Kind) string {
	if k == model.KindIncome {
		return incomeStyle.Render(format.KindLabel(k))
	}
	return expenseStyle.Render(format.KindLabel(k))
}
