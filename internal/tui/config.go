package tui

import (
	"context"
	"time"

	"github.com/Veraticus/ledger/internal/balance"
	"github.com/Veraticus/ledger/internal/installment"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
	"github.com/Veraticus/ledger/internal/tui/themes"
)

// Ledger is the set of ledger operations the application uses.
type Ledger interface {
	AddIncome(ctx context.Context, description string, amount float64, at time.Time) (int64, error)
	AddExpense(ctx context.Context, description, category string, amount float64, at time.Time) (int64, error)
	AddInstallments(ctx context.Context, plan installment.Plan) ([]int64, error)
	List(ctx context.Context, filter period.Filter) ([]model.Transaction, error)
	Update(ctx context.Context, id int64, update model.Update) error
	Delete(ctx context.Context, id int64) (bool, error)
	Years(ctx context.Context) ([]int, error)
	Summarize(ctx context.Context, filter period.Filter) (balance.Summary, error)
}

// Config holds TUI configuration.
type Config struct {
	Theme         themes.Theme
	Ledger        Ledger
	Currency      string
	DateLayout    string
	Width         int
	Height        int
	StatusTimeout time.Duration
	AltScreen     bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:         themes.Default,
		Currency:      "R$",
		DateLayout:    "02/01/2006",
		Width:         100,
		Height:        30,
		StatusTimeout: 4 * time.Second,
		AltScreen:     true,
	}
}

// WithLedger sets the ledger service.
func WithLedger(ledger Ledger) Option {
	return func(c *Config) {
		c.Ledger = ledger
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithDisplay sets the currency symbol and date layout.
func WithDisplay(currency, dateLayout string) Option {
	return func(c *Config) {
		if currency != "" {
			c.Currency = currency
		}
		if dateLayout != "" {
			c.DateLayout = dateLayout
		}
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithStatusTimeout sets how long status messages stay visible. Zero keeps
// them until replaced.
func WithStatusTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.StatusTimeout = d
	}
}

// WithAltScreen controls whether the program takes over the whole terminal.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}
