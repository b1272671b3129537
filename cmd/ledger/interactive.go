package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/tui"
	"github.com/Veraticus/ledger/internal/tui/themes"
)

func (a *app) menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive numbered menu",
		Long: `Run the interactive menu: add incomes and expenses (with installments),
see the balance, list and filter transactions, edit and delete them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeDB, err := a.initLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := handler.HandleInterrupts(cmd.Context())

			menu := cli.NewMenu(svc, cmd.InOrStdin(), cmd.OutOrStdout(), a.display())
			if err := menu.Run(ctx); err != nil && !handler.WasInterrupted() {
				return err
			}
			return nil
		},
	}
}

func (a *app) tuiCmd() *cobra.Command {
	var (
		plain       bool
		noAltScreen bool
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Terminal application with a transaction table and balance panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, closeDB, err := a.initLedger(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			theme := themes.Default
			if plain {
				theme = themes.Plain
			}
			return tui.Run(ctx,
				tui.WithLedger(svc),
				tui.WithTheme(theme),
				tui.WithDisplay(a.cfg.Display.Currency, a.cfg.Display.DateLayout),
				tui.WithAltScreen(!noAltScreen),
			)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "no colors")
	cmd.Flags().BoolVar(&noAltScreen, "no-alt-screen", false, "draw inline instead of on the alternate screen")
	return cmd
}
