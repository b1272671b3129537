package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/format"
	"github.com/Veraticus/ledger/internal/installment"
	"github.com/Veraticus/ledger/internal/model"
)

func (a *app) incomeCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:     "income <description> <amount>",
		Short:   "Record an income",
		Example: `  ledger income "Salário" 3500,00 --date 05/02/2024`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmountArg(args[1])
			if err != nil {
				return err
			}
			at, err := parseDateFlag("date", date)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, closeDB, err := a.initLedger(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			id, err := svc.AddIncome(ctx, args[0], amount, at)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Ganho registrado (ID %d).", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date as dd/mm/yyyy (default: now)")
	return cmd
}

func (a *app) expenseCmd() *cobra.Command {
	var (
		category string
		date     string
		firstDue string
		count    int
	)

	cmd := &cobra.Command{
		Use:   "expense <description> <amount>",
		Short: "Record an expense, optionally split into monthly installments",
		Long: `Record an expense. With --installments N the amount is the value of each
installment and N expenses are created, one per month starting at --first-due.
A due day that does not exist in a month falls on that month's last day.`,
		Example: `  ledger expense "Mercado" 70,30 --category Alimentação
  ledger expense "TV" 250 --category Casa --installments 10 --first-due 31/01/2024`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmountArg(args[1])
			if err != nil {
				return err
			}
			at, err := parseDateFlag("date", date)
			if err != nil {
				return err
			}
			due, err := parseDateFlag("first-due", firstDue)
			if err != nil {
				return err
			}
			if count < 0 || count == 1 {
				return common.NewUserError("Parcelas: informe um número maior que 1", nil)
			}

			ctx := cmd.Context()
			svc, closeDB, err := a.initLedger(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			out := cmd.OutOrStdout()
			if count == 0 {
				id, err := svc.AddExpense(ctx, args[0], category, amount, at)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Despesa registrada (ID %d).", id)))
				return nil
			}

			if due.IsZero() {
				due = at
			}
			if due.IsZero() {
				due = time.Now()
			}
			plan := installment.Plan{
				FirstDue:    due,
				Description: args[0],
				Category:    category,
				Amount:      amount,
				Count:       count,
			}
			ids, err := svc.AddInstallments(ctx, plan)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%d parcelas registradas (total %s).",
				len(ids), format.Money(a.cfg.Display.Currency, plan.Total()))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "expense category (required)")
	cmd.Flags().StringVar(&date, "date", "", "date as dd/mm/yyyy (default: now)")
	cmd.Flags().IntVarP(&count, "installments", "n", 0, "split into this many monthly installments")
	cmd.Flags().StringVar(&firstDue, "first-due", "", "first installment due date (default: --date or now)")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Example: `  ledger list --year 2024 --month fevereiro
  ledger list --kind expense`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := periodFromFlags(cmd)
			if err != nil {
				return err
			}
			var kind model.Kind
			if kindFlag != "" {
				if kind, err = model.ParseKind(kindFlag); err != nil {
					return common.NewUserError("Tipo inválido (use income ou expense)", err)
				}
			}

			ctx := cmd.Context()
			svc, closeDB, err := a.initLedger(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			txns, err := svc.ListByKind(ctx, filter, kind)
			if err != nil {
				return err
			}

			title := format.PeriodTitle(filter)
			if kind != "" {
				title = format.KindTitle(kind)
				if !filter.IsZero() {
					title += " - " + format.PeriodTitle(filter)
				}
			}
			return cli.RenderTable(cmd.OutOrStdout(), title, txns, a.display())
		},
	}

	addPeriodFlags(cmd)
	cmd.Flags().StringVar(&kindFlag, "kind", "", "only income or expense")
	return cmd
}

func (a *app) balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show total income, expense and net balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := periodFromFlags(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, closeDB, err := a.initLedger(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			summary, err := svc.Summarize(ctx, filter)
			if err != nil {
				return err
			}
			title := "Saldo"
			if !filter.IsZero() {
				title = "Saldo - " + format.PeriodTitle(filter)
			}
			return cli.RenderBalance(cmd.OutOrStdout(), title, summary, a.display())
		},
	}

	addPeriodFlags(cmd)
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var (
		description string
		amountArg   string
		category    string
	)

	cmd := &cobra.Command{
		Use:     "edit <id>",
		Short:   "Change description, amount or category of a transaction",
		Long:    `Edit a transaction. Omitted flags keep the current values; kind and date never change.`,
		Example: `  ledger edit 42 --amount 80,00 --category Casa`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("description") && !flags.Changed("amount") && !flags.Changed("category") {
				return common.NewUserError("Nada para alterar: use --description, --amount ou --category", nil)
			}

			ctx := cmd.Context()
			svc, closeDB, err := a.initLedger(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			current, err := svc.Get(ctx, id)
			if err != nil {
				return err
			}

			update := model.Update{
				Description: current.Description,
				Amount:      current.Amount,
				Category:    current.Category,
			}
			if flags.Changed("description") {
				update.Description = description
			}
			if flags.Changed("amount") {
				if update.Amount, err = parseAmountArg(amountArg); err != nil {
					return err
				}
			}
			if flags.Changed("category") {
				update.Category = category
			}

			if err := svc.Update(ctx, id, update); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Transação %d atualizada.", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&amountArg, "amount", "", "new amount")
	cmd.Flags().StringVar(&category, "category", "", "new category (expenses only)")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, closeDB, err := a.initLedger(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			out := cmd.OutOrStdout()
			txn, err := svc.Get(ctx, id)
			if err != nil {
				return err
			}

			if !force {
				prompt := fmt.Sprintf("Excluir '%s' (%s)?",
					txn.Description, format.Money(a.cfg.Display.Currency, txn.Amount))
				ok, err := cli.NewLineReader(cmd.InOrStdin()).Confirm(ctx, out, prompt)
				if err != nil || !ok {
					fmt.Fprintln(out, cli.FormatInfo("Exclusão cancelada."))
					return nil
				}
			}

			deleted, err := svc.Delete(ctx, id)
			if err != nil {
				return err
			}
			if !deleted {
				return &common.NotFoundError{ID: id}
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Transação %d excluída.", id)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}

func (a *app) yearsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List the years that have transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, closeDB, err := a.initLedger(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			years, err := svc.Years(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(years) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("Nenhuma transação registrada."))
				return nil
			}
			for _, y := range years {
				fmt.Fprintln(out, y)
			}
			return nil
		},
	}
}

func parseAmountArg(s string) (float64, error) {
	amount, err := cli.ParseAmount(s)
	if err != nil {
		return 0, common.NewUserError(fmt.Sprintf("Valor inválido %q (ex: 70,30)", s), nil)
	}
	return amount, nil
}

func parseDateFlag(name, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	at, err := cli.ParseDate(value)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("--%s: data inválida %q (dd/mm/aaaa)", name, value), nil)
	}
	return at, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, common.NewUserError(fmt.Sprintf("ID inválido %q", s), nil)
	}
	return id, nil
}

