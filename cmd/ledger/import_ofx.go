package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/ofx"
)

func (a *app) importOFXCmd() *cobra.Command {
	var (
		dryRun   bool
		category string
	)

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your bank.

Credits become incomes and debits become expenses. Fees, ATM withdrawals and
checks get their own categories; every other expense gets --category.
All files are stored in a single batch: either everything is imported or nothing is.`,
		Example: `  # Import single file
  ledger import-ofx ~/Downloads/extrato_jan_2024.ofx

  # Preview every QFX file in a directory
  ledger import-ofx --dry-run ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}
			if category == "" {
				category = a.cfg.Ledger.ImportCategory
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			parser := ofx.NewParser(category)

			bar := progressbar.NewOptions(len(files),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan][bold]Lendo arquivos...[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(cmd.ErrOrStderr())
				}),
			)

			var all []model.NewTransaction
			for _, path := range files {
				txns, err := parseOFXFile(cmd, parser, path)
				if err != nil {
					return err
				}
				all = append(all, txns...)
				_ = bar.Add(1)
			}

			if len(all) == 0 {
				fmt.Fprintln(out, cli.FormatWarning("Nenhuma transação encontrada nos arquivos."))
				return nil
			}

			if dryRun {
				preview := make([]model.Transaction, len(all))
				for i, txn := range all {
					preview[i] = model.Transaction{
						RecordedAt:  txn.RecordedAt,
						Kind:        txn.Kind,
						Description: txn.Description,
						Category:    txn.Category,
						Amount:      txn.Amount,
					}
				}
				if err := cli.RenderTable(out, "Pré-visualização da importação", preview, a.display()); err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d transações seriam importadas (nada foi salvo).", len(all))))
				return nil
			}

			svc, closeDB, err := a.initLedger(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			ids, err := svc.Import(ctx, all)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%d transações importadas de %d arquivo(s).", len(ids), len(files))))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "preview import without saving")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category for uncategorized expenses (default: ledger.import_category)")
	return cmd
}

func parseOFXFile(cmd *cobra.Command, parser *ofx.Parser, path string) ([]model.NewTransaction, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided statement file
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	txns, err := parser.ParseFile(cmd.Context(), f)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Arquivo OFX inválido: %s", filepath.Base(path)), err)
	}
	slog.Debug("Parsed OFX file", "file", filepath.Base(path), "transactions", len(txns))
	return txns, nil
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, common.NewUserError("Nenhum arquivo encontrado para importar", nil)
	}
	return files, nil
}
