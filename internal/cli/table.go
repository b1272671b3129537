package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/ledger/internal/balance"
	"github.com/Veraticus/ledger/internal/format"
	"github.com/Veraticus/ledger/internal/model"
)

// Display controls how amounts and dates are printed.
type Display struct {
	Currency   string
	DateLayout string
}

// DefaultDisplay matches the configuration defaults.
func DefaultDisplay() Display {
	return Display{Currency: "R$", DateLayout: "02/01/2006"}
}

// RenderTable prints txns as a fixed-width table under title.
func RenderTable(w io.Writer, title string, txns []model.Transaction, d Display) error {
	if _, err := fmt.Fprintln(w, FormatTitle(title)); err != nil {
		return fmt.Errorf("failed to write table title: %w", err)
	}
	if len(txns) == 0 {
		if _, err := fmt.Fprintln(w, SubtleStyle.Render("Nenhuma transação encontrada.")); err != nil {
			return fmt.Errorf("failed to write empty table: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := tw.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	headers := []string{"ID", "Data", "Tipo", "Descrição", fmt.Sprintf("Valor (%s)", d.Currency), "Categoria"}
	for i, h := range headers {
		headers[i] = TableHeaderStyle.Render(h)
	}
	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}

	for _, txn := range txns {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			txn.ID,
			format.Date(d.DateLayout, txn.RecordedAt),
			FormatKind(txn.Kind),
			txn.Description,
			format.Number(txn.Amount),
			format.Category(txn.Category),
		); err != nil {
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}
	return nil
}

// RenderBalance prints income, expense and net totals. A negative net is
// highlighted.
func RenderBalance(w io.Writer, title string, s balance.Summary, d Display) error {
	net := format.Net(d.Currency, s.Net)
	if s.IsNegative() {
		net = ErrorStyle.Render(net)
	} else {
		net = SuccessStyle.Render(net)
	}

	lines := []string{
		FormatTitle(title),
		fmt.Sprintf("Total de Ganhos:   %s", format.Money(d.Currency, s.Income)),
		fmt.Sprintf("Total de Despesas: %s", format.Money(d.Currency, s.Expense)),
		strings.Repeat("-", 30),
		fmt.Sprintf("Saldo Disponível:  %s", net),
		strings.Repeat("-", 30),
	}
	if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write balance: %w", err)
	}
	return nil
}
