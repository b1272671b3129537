package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/ledger/internal/balance"
	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/format"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
)

type row struct {
	Date        string
	Kind        string
	Description string
	Amount      string
	Category    string
	ID          int64
}

type expenseForm struct {
	Description string
	Amount      string
	Category    string
}

type page struct {
	Title    string
	Year     string
	Month    string
	Error    string
	Income   string
	Expense  string
	Net      string
	Form     expenseForm
	Rows     []row
	Negative bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := page{Year: q.Get("ano"), Month: q.Get("mes")}

	filter, err := period.Parse(p.Year, p.Month)
	if err != nil {
		p.Error = cli.Describe(err)
		s.render(w, r, http.StatusBadRequest, p)
		return
	}

	status, err := s.fill(r, &p, filter)
	if err != nil {
		http.Error(w, http.StatusText(status), status)
		return
	}
	s.render(w, r, http.StatusOK, p)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formulário inválido", http.StatusBadRequest)
		return
	}

	form := expenseForm{
		Description: r.PostForm.Get("descricao"),
		Amount:      strings.TrimSpace(r.PostForm.Get("valor")),
		Category:    strings.TrimSpace(r.PostForm.Get("categoria")),
	}

	reject := func(message string) {
		p := page{Form: form, Error: message}
		if _, err := s.fill(r, &p, period.All); err != nil {
			slog.ErrorContext(r.Context(), "Failed to load ledger", "error", err)
		}
		s.render(w, r, http.StatusBadRequest, p)
	}

	if strings.TrimSpace(form.Description) == "" || form.Amount == "" || form.Category == "" {
		reject("Preencha descrição, valor e categoria.")
		return
	}
	amount, err := cli.ParseAmount(form.Amount, s.opts.Display.Currency)
	if err != nil {
		if errors.Is(err, cli.ErrNonPositiveAmount) {
			reject("O valor deve ser positivo.")
		} else {
			reject("Valor inválido (ex: 70,30).")
		}
		return
	}

	id, err := s.ledger.AddExpense(r.Context(), form.Description, form.Category, amount, time.Time{})
	if err != nil {
		if statusFor(err) == http.StatusBadRequest {
			reject(cli.Describe(err))
			return
		}
		slog.ErrorContext(r.Context(), "Failed to save expense", "error", err, "description", form.Description)
		http.Error(w, "falha ao salvar despesa", statusFor(err))
		return
	}

	slog.DebugContext(r.Context(), "Expense added", "id", id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// fill loads rows and totals for filter into p. On failure it returns the
// HTTP status to answer with.
func (s *Server) fill(r *http.Request, p *page, filter period.Filter) (int, error) {
	ctx := r.Context()
	txns, err := s.ledger.List(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list transactions", "error", err, "filter", filter.String())
		return statusFor(err), err
	}
	d := s.opts.Display
	p.Title = format.PeriodTitle(filter)
	p.Rows = make([]row, 0, len(txns))
	for _, txn := range txns {
		p.Rows = append(p.Rows, newRow(txn, d))
	}
	s.setSummary(p, balance.Summarize(txns))
	return http.StatusOK, nil
}

func (s *Server) setSummary(p *page, summary balance.Summary) {
	c := s.opts.Display.Currency
	p.Income = format.Money(c, summary.Income)
	p.Expense = format.Money(c, summary.Expense)
	p.Net = format.Net(c, summary.Net)
	p.Negative = summary.IsNegative()
}

func newRow(txn model.Transaction, d cli.Display) row {
	return row{
		ID:          txn.ID,
		Date:        format.Date(d.DateLayout, txn.RecordedAt),
		Kind:        format.KindLabel(txn.Kind),
		Description: txn.Description,
		Amount:      format.Number(txn.Amount),
		Category:    format.Category(txn.Category),
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, p page) {
	if p.Title == "" {
		p.Title = format.PeriodTitle(period.All)
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", p); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render page", "error", err)
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// statusFor maps ledger errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

