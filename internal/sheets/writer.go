package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/format"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
	"github.com/Veraticus/ledger/internal/service"
)

// Writer exports reports into a spreadsheet. Each period gets its own tab,
// which is cleared and rewritten on every export.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

var _ service.ReportWriter = (*Writer)(nil)

// NewWriter authenticates against the Sheets API.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ts, err := tokenSource(ctx, config)
	if err != nil {
		return nil, err
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

func tokenSource(ctx context.Context, config Config) (oauth2.TokenSource, error) {
	if config.ServiceAccountPath != "" {
		key, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwt, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		return jwt.TokenSource(ctx), nil
	}

	client := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
	return client.TokenSource(ctx, &oauth2.Token{RefreshToken: config.RefreshToken, TokenType: "Bearer"}), nil
}

// Write replaces the report's period tab with the balance summary, the
// expense breakdown and the transaction list.
func (w *Writer) Write(ctx context.Context, report service.Report) error {
	tab := TabTitle(report.Filter)
	w.logger.Info("starting report export",
		"transactions", len(report.Transactions),
		"tab", tab)

	spreadsheetID, err := w.spreadsheet(ctx, tab)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var sheetID int64
	err = common.WithRetry(ctx, func() error {
		var tabErr error
		sheetID, tabErr = w.ensureTab(ctx, spreadsheetID, tab)
		return tabErr
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to prepare tab %q: %w", tab, err)
	}

	_, err = w.service.Spreadsheets.Values.Clear(spreadsheetID, quoteTab(tab), &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear tab %q: %w", tab, classifyAPIError(err))
	}

	lay := buildLayout(report)
	err = common.WithRetry(ctx, func() error {
		return w.writeValues(ctx, spreadsheetID, tab, lay.values)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		requests := formatRequests(sheetID, lay, w.config.Currency)
		err = common.WithRetry(ctx, func() error {
			_, fmtErr := w.service.Spreadsheets.BatchUpdate(spreadsheetID,
				&sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
			return classifyAPIError(fmtErr)
		}, retryOpts)
		if err != nil {
			// Unformatted data is still a usable report.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report export completed",
		"spreadsheet_id", spreadsheetID,
		"tab", tab,
		"rows_written", len(lay.values))
	return nil
}

// spreadsheet returns the configured spreadsheet, or creates one whose first
// tab is named tab.
func (w *Writer) spreadsheet(ctx context.Context, tab string) (string, error) {
	if w.config.SpreadsheetID != "" {
		return w.config.SpreadsheetID, nil
	}

	created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: tab}}},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", classifyAPIError(err))
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)
	return created.SpreadsheetId, nil
}

// ensureTab returns the sheet id of the tab titled title, adding the tab when
// the spreadsheet does not have it yet.
func (w *Writer) ensureTab(ctx context.Context, spreadsheetID, title string) (int64, error) {
	doc, err := w.service.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, classifyAPIError(err)
	}
	for _, sheet := range doc.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return sheet.Properties.SheetId, nil
		}
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, classifyAPIError(err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("add sheet %q: empty reply", title)
	}

	w.logger.Debug("added tab", "title", title)
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (w *Writer) writeValues(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	for start := 0; start < len(values); start += w.config.BatchSize {
		end := min(start+w.config.BatchSize, len(values))

		cell := fmt.Sprintf("%s!A%d", quoteTab(tab), start+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, cell, &sheets.ValueRange{Values: values[start:end]}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", start+1, classifyAPIError(err))
		}

		w.logger.Debug("wrote batch", "start_row", start+1, "rows", end-start)
	}
	return nil
}

// TabTitle names the tab a period is exported to.
func TabTitle(f period.Filter) string {
	switch {
	case f.HasYear() && f.HasMonth():
		return fmt.Sprintf("%s %d", format.MonthName(f.Month), f.Year)
	case f.HasYear():
		return fmt.Sprintf("%d", f.Year)
	case f.HasMonth():
		return format.MonthName(f.Month) + " (todos os anos)"
	default:
		return "Todos os Anos"
	}
}

// quoteTab turns a tab title into an A1 range prefix.
func quoteTab(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// buildLayout lays out the report: title, balance summary, expense breakdown
// by category, then every transaction newest first.
func buildLayout(report service.Report) layout {
	var lay layout

	lay.add(
		[]any{"Controle Financeiro", format.PeriodTitle(report.Filter)},
		[]any{},
	)

	lay.heading("Resumo")
	first := lay.add(
		[]any{"Total de Ganhos", cents(report.Summary.Income).InexactFloat64()},
		[]any{"Total de Despesas", cents(report.Summary.Expense).InexactFloat64()},
		[]any{"Saldo", cents(report.Summary.Net).InexactFloat64()},
	)
	lay.money = append(lay.money, moneyColumn{col: 1, from: first, to: first + 3})
	lay.add([]any{"Transações", report.Summary.Count}, []any{})

	lay.heading("Despesas por Categoria")
	lay.heading("Categoria", "Quantidade", "Total")
	first = len(lay.values)
	for _, row := range newCategoryRows(report.Transactions) {
		lay.add(row.values())
	}
	lay.money = append(lay.money, moneyColumn{col: 2, from: first, to: len(lay.values)})
	lay.add([]any{})

	lay.heading("Transações")
	lay.heading("Data", "Tipo", "Descrição", "Categoria", "Valor")

	txns := make([]model.Transaction, len(report.Transactions))
	copy(txns, report.Transactions)
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].RecordedAt.Equal(txns[j].RecordedAt) {
			return txns[i].RecordedAt.After(txns[j].RecordedAt)
		}
		return txns[i].ID > txns[j].ID
	})

	first = len(lay.values)
	for _, txn := range txns {
		lay.add(newTransactionRow(txn).values())
	}
	lay.money = append(lay.money, moneyColumn{col: 4, from: first, to: len(lay.values)})

	return lay
}

// formatRequests styles a tab written from lay: a large title, bold section
// headings, currency cells, a frozen title row and fitted columns.
func formatRequests(sheetID int64, lay layout, currency string) []*sheets.Request {
	textFormat := func(row int64, tf *sheets.TextFormat) *sheets.Request {
		return &sheets.Request{RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    row,
				EndRowIndex:      row + 1,
				StartColumnIndex: 0,
				EndColumnIndex:   5,
			},
			Cell:   &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{TextFormat: tf}},
			Fields: "userEnteredFormat.textFormat",
		}}
	}

	requests := []*sheets.Request{textFormat(0, &sheets.TextFormat{Bold: true, FontSize: 16})}
	for _, row := range lay.headings {
		requests = append(requests, textFormat(int64(row), &sheets.TextFormat{Bold: true}))
	}

	for _, m := range lay.money {
		if m.from == m.to {
			continue
		}
		requests = append(requests, &sheets.Request{RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    int64(m.from),
				EndRowIndex:      int64(m.to),
				StartColumnIndex: int64(m.col),
				EndColumnIndex:   int64(m.col + 1),
			},
			Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
				NumberFormat: &sheets.NumberFormat{Type: "CURRENCY", Pattern: currencyPattern(currency)},
			}},
			Fields: "userEnteredFormat.numberFormat",
		}})
	}

	return append(requests,
		&sheets.Request{UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:        sheetID,
				GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
			},
			Fields: "gridProperties.frozenRowCount",
		}},
		&sheets.Request{AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "COLUMNS",
				StartIndex: 0,
				EndIndex:   5,
			},
		}},
	)
}

// currencyPattern renders amounts as `"R$ "#,##0.00` with red negatives.
func currencyPattern(symbol string) string {
	if symbol == "" {
		symbol = "$"
	}
	p := fmt.Sprintf(`"%s "#,##0.00`, symbol)
	return p + ";[Red]-" + p
}

// classifyAPIError marks Sheets API failures for WithRetry: 429 becomes
// ErrRateLimit, 5xx is retried and any other HTTP status is final.
func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == 429:
		return fmt.Errorf("%w: %v", common.ErrRateLimit, err)
	case apiErr.Code >= 500:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}
