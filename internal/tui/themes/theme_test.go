package themes

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	theme := New(Dark)

	assert.Equal(t, lipgloss.Color("#10b981"), theme.Income.GetForeground())
	assert.Equal(t, lipgloss.Color("#f59e0b"), theme.Expense.GetForeground())
	assert.Equal(t, lipgloss.Color("#ef4444"), theme.Negative.GetForeground())
	assert.True(t, theme.Negative.GetBold())
	assert.Equal(t, lipgloss.Color("#0ea5e9"), theme.Selected.GetBackground())
	assert.Equal(t, lipgloss.Color("#0ea5e9"), theme.FocusedField.GetForeground())
}

func TestPlain_RendersText(t *testing.T) {
	assert.Equal(t, "Saldo", Plain.Income.Render("Saldo"))
	assert.Contains(t, Plain.Panel.Render("x"), "x")
}
