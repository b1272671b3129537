package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/ledger"
	"github.com/Veraticus/ledger/internal/period"
	"github.com/Veraticus/ledger/internal/storage"
)

// initStorage opens the configured database and brings its schema up to date.
func (a *app) initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(a.cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initLedger opens the store and wraps it in a ledger service. Call the
// returned func to close the database.
func (a *app) initLedger(ctx context.Context) (*ledger.Service, func(), error) {
	store, err := a.initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc := ledger.NewWithConfig(store, ledger.Config{
		AtomicInstallments: a.cfg.Ledger.AtomicInstallments,
	})
	return svc, func() { _ = store.Close() }, nil
}

func (a *app) display() cli.Display {
	return cli.Display{
		Currency:   a.cfg.Display.Currency,
		DateLayout: a.cfg.Display.DateLayout,
	}
}

func addPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().String("year", "", "only this year (yyyy)")
	cmd.Flags().String("month", "", "only this month (1-12 or name)")
}

func periodFromFlags(cmd *cobra.Command) (period.Filter, error) {
	year, _ := cmd.Flags().GetString("year")
	month, _ := cmd.Flags().GetString("month")
	return period.Parse(year, month)
}
