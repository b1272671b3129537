// Package sheets exports ledger reports to Google Sheets, one tab per period.
package sheets

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // TimeZone is validated on hosts without a zoneinfo database

	"github.com/Veraticus/ledger/internal/common"
)

// Config holds the Google Sheets writer settings. Exactly one of the service
// account key or the OAuth2 client credentials must be set.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	// SpreadsheetID selects an existing spreadsheet; empty creates a new one
	// named SpreadsheetName.
	SpreadsheetID    string
	SpreadsheetName  string
	TimeZone         string
	Currency         string
	BatchSize        int
	RetryAttempts    int
	RetryDelay       time.Duration
	EnableFormatting bool
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "Controle Financeiro",
		TimeZone:         "America/Sao_Paulo",
		Currency:         "R$",
		BatchSize:        500,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
		EnableFormatting: true,
	}
}

func (c *Config) hasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch hasKey := c.ServiceAccountPath != ""; {
	case !hasKey && !c.hasOAuth():
		errs = append(errs, fmt.Errorf("%w: no authentication method configured", common.ErrMissingConfig))
	case hasKey && c.hasOAuth():
		errs = append(errs, fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account",
			common.ErrInvalidConfig))
	}

	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig))
	}
	if c.RetryAttempts < 0 {
		errs = append(errs, fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig))
	}
	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			errs = append(errs, fmt.Errorf("%w: time zone %q", common.ErrInvalidConfig, c.TimeZone))
		}
	}

	return errors.Join(errs...)
}
