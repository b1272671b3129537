package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/config"
	"github.com/Veraticus/ledger/internal/format"
	"github.com/Veraticus/ledger/internal/period"
	"github.com/Veraticus/ledger/internal/service"
	"github.com/Veraticus/ledger/internal/sheets"
)

func (a *app) exportSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-sheets",
		Short: "Export transactions and balance to Google Sheets",
		Long: `Write a report for the selected period to a Google Sheets spreadsheet:
the balance, expenses per category and every transaction. Each period has its
own tab ("Fevereiro 2024", "2024", "Todos os Anos"), rewritten on every export.

Credentials come from sheets.* config keys or GOOGLE_SHEETS_* environment
variables: either a service account file or an OAuth client with a refresh token.`,
		Example: `  GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH=~/sa.json ledger export-sheets --year 2024`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := periodFromFlags(cmd)
			if err != nil {
				return err
			}
			sheetsCfg, err := config.LoadSheetsConfig(a.v)
			if err != nil {
				return fmt.Errorf("google sheets configuration: %w", err)
			}

			ctx := cmd.Context()
			svc, closeDB, err := a.initLedger(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
			if err != nil {
				return err
			}
			return exportReport(cmd, svc, writer, filter)
		},
	}

	addPeriodFlags(cmd)
	return cmd
}

type reporter interface {
	Report(ctx context.Context, filter period.Filter) (service.Report, error)
}

func exportReport(cmd *cobra.Command, src reporter, dst service.ReportWriter, filter period.Filter) error {
	ctx := cmd.Context()
	report, err := src.Report(ctx, filter)
	if err != nil {
		return err
	}
	if err := dst.Write(ctx, report); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s: %d transações exportadas.",
		format.PeriodTitle(filter), len(report.Transactions))))
	return nil
}
