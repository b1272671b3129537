// Package themes defines the colors and styles of the terminal application.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme holds every style the terminal application renders with.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style

	// Table rows.
	Header   lipgloss.Style
	Selected lipgloss.Style

	// Balance panel.
	Income   lipgloss.Style
	Expense  lipgloss.Style
	Positive lipgloss.Style
	Negative lipgloss.Style

	// Forms and dialogs.
	Panel        lipgloss.Style
	FocusedField lipgloss.Style
	BlurredField lipgloss.Style

	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
}

// Palette is the set of colors a Theme is derived from.
type Palette struct {
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Accent lipgloss.Color
	Border lipgloss.Color
	Gain   lipgloss.Color
	Spend  lipgloss.Color
	Loss   lipgloss.Color
	Notice lipgloss.Color
}

// New derives a theme from p.
func New(p Palette) Theme {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return Theme{
		Title:    fg(p.Text).Bold(true),
		Subtitle: fg(p.Muted),

		Header: lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.Border),
		Selected: fg(p.Text).Background(p.Accent).Bold(true),

		Income:   fg(p.Gain),
		Expense:  fg(p.Spend),
		Positive: fg(p.Gain).Bold(true),
		Negative: fg(p.Loss).Bold(true),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 2),
		FocusedField: fg(p.Accent).Bold(true),
		BlurredField: fg(p.Muted),

		StatusInfo:    fg(p.Notice),
		StatusError:   fg(p.Loss).Bold(true),
		StatusSuccess: fg(p.Gain).Bold(true),
	}
}

// Dark is the palette of the default theme.
var Dark = Palette{
	Text:   lipgloss.Color("#fafafa"),
	Muted:  lipgloss.Color("#a3a3a3"),
	Accent: lipgloss.Color("#0ea5e9"),
	Border: lipgloss.Color("#404040"),
	Gain:   lipgloss.Color("#10b981"),
	Spend:  lipgloss.Color("#f59e0b"),
	Loss:   lipgloss.Color("#ef4444"),
	Notice: lipgloss.Color("#3b82f6"),
}

// Default is the theme used unless --plain is given.
var Default = New(Dark)

// Plain has no colors, for terminals without color support and tests.
var Plain = Theme{
	Title:         lipgloss.NewStyle().Bold(true),
	Subtitle:      lipgloss.NewStyle(),
	Header:        lipgloss.NewStyle().Bold(true),
	Selected:      lipgloss.NewStyle().Reverse(true),
	Income:        lipgloss.NewStyle(),
	Expense:       lipgloss.NewStyle(),
	Positive:      lipgloss.NewStyle(),
	Negative:      lipgloss.NewStyle(),
	Panel:         lipgloss.NewStyle().Border(lipgloss.NormalBorder()),
	FocusedField:  lipgloss.NewStyle().Bold(true),
	BlurredField:  lipgloss.NewStyle(),
	StatusInfo:    lipgloss.NewStyle(),
	StatusError:   lipgloss.NewStyle(),
	StatusSuccess: lipgloss.NewStyle(),
}
