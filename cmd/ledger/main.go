package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/config"
)

var version = "dev"

// app carries the state shared by every command of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "ledger",
		Short: cli.LedgerIcon + " Personal finance ledger",
		Long: `ledger records incomes and expenses, splits purchases into monthly
installments and reports balances by year and month.

Use it from the command line, the interactive menu (ledger menu),
the terminal application (ledger tui) or the browser (ledger serve).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/ledger/config.yaml)")
	flags.String("database", "", "database file (default: "+config.DefaultDatabasePath+")")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = a.v.BindPFlag("database.path", flags.Lookup("database"))
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(
		a.migrateCmd(),
		a.incomeCmd(),
		a.expenseCmd(),
		a.listCmd(),
		a.balanceCmd(),
		a.editCmd(),
		a.deleteCmd(),
		a.yearsCmd(),
		a.menuCmd(),
		a.tuiCmd(),
		a.serveCmd(),
		a.importOFXCmd(),
		a.exportSheetsCmd(),
		a.backupCmd(),
		versionCmd(),
	)

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(errorMessage(err)))
		os.Exit(1)
	}
}

// errorMessage prefers the user-facing text of ledger errors.
func errorMessage(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return userErr.Error()
	}
	if isLedgerError(err) {
		return cli.Describe(err)
	}
	return err.Error()
}

func isLedgerError(err error) bool {
	for _, target := range []error{
		common.ErrValidation, common.ErrNotFound, common.ErrInvalidPeriod, common.ErrPartialBatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	// A missing .env is fine; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if dir := config.Dir(); dir != "" {
			a.v.AddConfigPath(dir)
		}
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	// Environment variables: LEDGER_DATABASE_PATH, LEDGER_WEB_ADDR, ...
	a.v.SetEnvPrefix("LEDGER")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := common.SetupLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.Debug("Configuration loaded", "config_file", a.v.ConfigFileUsed(), "database", cfg.Database.Path)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ledger "+version)
		},
	}
}
