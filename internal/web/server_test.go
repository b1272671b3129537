package web

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger/internal/certs"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
	"github.com/Veraticus/ledger/internal/testutil"
)

func newTestServer(t *testing.T, seed ...model.NewTransaction) (http.Handler, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupLedger(t)
	for _, txn := range seed {
		db.MustAdd(txn)
	}
	srv, err := NewServer(db.Ledger, Options{})
	require.NoError(t, err)
	return srv.Handler(), db
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func postExpense(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/despesas", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)
	rec := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestIndex(t *testing.T) {
	seed := []model.NewTransaction{
		testutil.Income("Salário", 1000, testutil.Date(2024, 2, 5)),
		testutil.Expense("Aluguel", "Casa", 400, testutil.Date(2024, 2, 10)),
		testutil.Expense("Luz", "Casa", 90, testutil.Date(2023, 11, 3)),
	}

	tests := []struct {
		name     string
		target   string
		contains []string
		excludes []string
		status   int
	}{
		{
			name:     "all transactions",
			target:   "/",
			status:   http.StatusOK,
			contains: []string{"Todas as Transações Registradas", "Salário", "Aluguel", "Luz", "R$ 510.00"},
		},
		{
			name:     "year and month",
			target:   "/?ano=2024&mes=2",
			status:   http.StatusOK,
			contains: []string{"Transações de Fevereiro/2024", "Aluguel", "R$ 600.00"},
			excludes: []string{"Luz"},
		},
		{
			name:     "month name",
			target:   "/?mes=novembro",
			status:   http.StatusOK,
			contains: []string{"Transações de Novembro (Todos os Anos)", "Luz"},
			excludes: []string{"Aluguel"},
		},
		{
			name:     "empty period",
			target:   "/?ano=2020",
			status:   http.StatusOK,
			contains: []string{"Nenhuma transação encontrada.", "R$ 0.00"},
		},
		{
			name:     "invalid year",
			target:   "/?ano=24",
			status:   http.StatusBadRequest,
			contains: []string{"Período inválido"},
		},
		{
			name:     "invalid month",
			target:   "/?mes=13",
			status:   http.StatusBadRequest,
			contains: []string{"Período inválido"},
		},
	}

	h, _ := newTestServer(t, seed...)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			body := rec.Body.String()
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestIndex_NegativeNet(t *testing.T) {
	h, _ := newTestServer(t, testutil.Expense("Aluguel", "Casa", 15.5, testutil.Date(2024, 2, 10)))

	body := get(t, h, "/").Body.String()
	assert.Contains(t, body, `class="negativo"`)
	assert.Contains(t, body, "-R$ 15.50 (Negativo)")
}

func TestCreateExpense(t *testing.T) {
	h, db := newTestServer(t)

	rec := postExpense(t, h, url.Values{
		"descricao": {"Mercado"},
		"valor":     {"70,30"},
		"categoria": {"Alimentação"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	txns, err := db.Ledger.List(context.Background(), period.All)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, model.KindExpense, txns[0].Kind)
	assert.Equal(t, "Mercado", txns[0].Description)
	assert.Equal(t, "Alimentação", txns[0].Category)
	assert.InDelta(t, 70.30, txns[0].Amount, 1e-9)
	assert.WithinDuration(t, time.Now(), txns[0].RecordedAt, time.Minute)
}

func TestCreateExpense_Rejected(t *testing.T) {
	tests := []struct {
		form    url.Values
		name    string
		message string
	}{
		{
			name:    "missing category",
			form:    url.Values{"descricao": {"Mercado"}, "valor": {"10"}},
			message: "Preencha descrição, valor e categoria.",
		},
		{
			name:    "blank description",
			form:    url.Values{"descricao": {"   "}, "valor": {"10"}, "categoria": {"Casa"}},
			message: "Preencha descrição, valor e categoria.",
		},
		{
			name:    "zero amount",
			form:    url.Values{"descricao": {"Mercado"}, "valor": {"0"}, "categoria": {"Casa"}},
			message: "O valor deve ser positivo.",
		},
		{
			name:    "negative amount",
			form:    url.Values{"descricao": {"Mercado"}, "valor": {"-5"}, "categoria": {"Casa"}},
			message: "O valor deve ser positivo.",
		},
		{
			name:    "not a number",
			form:    url.Values{"descricao": {"Mercado"}, "valor": {"abc"}, "categoria": {"Casa"}},
			message: "Valor inválido",
		},
		{
			name:    "letter before number",
			form:    url.Values{"descricao": {"Mercado"}, "valor": {"x12,50"}, "categoria": {"Casa"}},
			message: "Valor inválido",
		},
		{
			name:    "exponent",
			form:    url.Values{"descricao": {"Mercado"}, "valor": {"e5"}, "categoria": {"Casa"}},
			message: "Valor inválido",
		},
		{
			name:    "word before number",
			form:    url.Values{"descricao": {"Mercado"}, "valor": {"valor 7"}, "categoria": {"Casa"}},
			message: "Valor inválido",
		},
	}

	h, db := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postExpense(t, h, tt.form)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
		})
	}

	count, err := db.Storage.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

type failingLedger struct{ err error }

func (f failingLedger) AddExpense(context.Context, string, string, float64, time.Time) (int64, error) {
	return 0, f.err
}

func (f failingLedger) List(context.Context, period.Filter) ([]model.Transaction, error) {
	return nil, f.err
}

type countingLedger struct {
	txns  []model.Transaction
	lists int
}

func (c *countingLedger) AddExpense(context.Context, string, string, float64, time.Time) (int64, error) {
	return 0, errors.New("read only")
}

func (c *countingLedger) List(context.Context, period.Filter) ([]model.Transaction, error) {
	c.lists++
	return c.txns, nil
}

func TestIndex_TotalsFromListedRows(t *testing.T) {
	at := testutil.Date(2024, 2, 10)
	l := &countingLedger{txns: []model.Transaction{
		{ID: 2, Kind: model.KindExpense, Description: "Aluguel", Category: "Casa", Amount: 40, RecordedAt: at},
		{ID: 1, Kind: model.KindIncome, Description: "Salário", Amount: 100, RecordedAt: at},
	}}
	srv, err := NewServer(l, Options{})
	require.NoError(t, err)

	rec := get(t, srv.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, l.lists)
	body := rec.Body.String()
	assert.Contains(t, body, "R$ 100.00")
	assert.Contains(t, body, "R$ 40.00")
	assert.Contains(t, body, "R$ 60.00")
}

func TestStorageFailures(t *testing.T) {
	srv, err := NewServer(failingLedger{err: errors.New("disk I/O error")}, Options{})
	require.NoError(t, err)
	h := srv.Handler()

	assert.Equal(t, http.StatusInternalServerError, get(t, h, "/").Code)

	rec := postExpense(t, h, url.Values{"descricao": {"X"}, "valor": {"1"}, "categoria": {"Y"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNewServer_RequiresLedger(t *testing.T) {
	_, err := NewServer(nil, Options{})
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	db := testutil.SetupLedger(t)
	srv, err := NewServer(db.Ledger, Options{Addr: "127.0.0.1:0"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_ServesTLS(t *testing.T) {
	db := testutil.SetupLedger(t)
	cert, err := certs.NewStore(t.TempDir()).Certificate()
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv, err := NewServer(db.Ledger, Options{Addr: addr, TLSCert: &cert})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	client := &http.Client{
		Timeout:   time.Second,
		Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}, // #nosec G402 -- self-signed test certificate
	}
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = client.Get("https://" + addr + "/health")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, resp.TLS)

	cancel()
	assert.NoError(t, <-done)
}
