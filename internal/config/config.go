package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/ledger/internal/common"
)

// Config is the resolved application configuration.
type Config struct {
	Database DatabaseConfig
	Web      WebConfig
	Display  DisplayConfig
	Logging  LoggingConfig
	Ledger   LedgerConfig
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string
}

// WebConfig configures the HTTP front-end.
type WebConfig struct {
	Addr         string
	CertDir      string
	TLS          bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DisplayConfig controls how amounts and dates are shown.
type DisplayConfig struct {
	Currency   string
	DateLayout string
}

// LedgerConfig holds ledger behavior switches.
type LedgerConfig struct {
	ImportCategory     string
	AtomicInstallments bool
}

// LoggingConfig mirrors the --log-level and --log-format flags.
type LoggingConfig struct {
	Level  string
	Format string
}

// Defaults.
const (
	DefaultDatabasePath   = "$HOME/.local/share/ledger/ledger.db"
	DefaultWebAddr        = ":5000"
	DefaultCertDir        = "$HOME/.config/ledger/certs"
	DefaultCurrency       = "R$"
	DefaultDateLayout     = "02/01/2006"
	DefaultImportCategory = "Imported"
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("web.addr", DefaultWebAddr)
	v.SetDefault("web.read_timeout", 10*time.Second)
	v.SetDefault("web.write_timeout", 10*time.Second)
	v.SetDefault("web.tls", false)
	v.SetDefault("web.cert_dir", DefaultCertDir)
	v.SetDefault("display.currency", DefaultCurrency)
	v.SetDefault("display.date_layout", DefaultDateLayout)
	v.SetDefault("ledger.atomic_installments", true)
	v.SetDefault("ledger.import_category", DefaultImportCategory)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load resolves the configuration from v, applying defaults for unset keys,
// and validates it.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Web: WebConfig{
			Addr:         v.GetString("web.addr"),
			ReadTimeout:  v.GetDuration("web.read_timeout"),
			WriteTimeout: v.GetDuration("web.write_timeout"),
			TLS:          v.GetBool("web.tls"),
			CertDir:      ExpandPath(v.GetString("web.cert_dir")),
		},
		Display: DisplayConfig{
			Currency:   v.GetString("display.currency"),
			DateLayout: v.GetString("display.date_layout"),
		},
		Ledger: LedgerConfig{
			AtomicInstallments: v.GetBool("ledger.atomic_installments"),
			ImportCategory:     v.GetString("ledger.import_category"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: database.path", common.ErrMissingConfig))
	}
	if strings.TrimSpace(c.Web.Addr) == "" {
		errs = append(errs, fmt.Errorf("%w: web.addr", common.ErrMissingConfig))
	}
	if c.Web.TLS && strings.TrimSpace(c.Web.CertDir) == "" {
		errs = append(errs, fmt.Errorf("%w: web.cert_dir is required with web.tls", common.ErrMissingConfig))
	}
	if c.Web.ReadTimeout < 0 || c.Web.WriteTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: web timeouts must not be negative", common.ErrInvalidConfig))
	}
	if strings.TrimSpace(c.Display.DateLayout) == "" {
		errs = append(errs, fmt.Errorf("%w: display.date_layout", common.ErrMissingConfig))
	}
	if strings.TrimSpace(c.Ledger.ImportCategory) == "" {
		errs = append(errs, fmt.Errorf("%w: ledger.import_category", common.ErrMissingConfig))
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown log format %q", common.ErrInvalidConfig, c.Logging.Format))
	}

	return errors.Join(errs...)
}
