package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/Veraticus/ledger/internal/balance"
	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
	"github.com/Veraticus/ledger/internal/service"
)

func TestConfig_Validate(t *testing.T) {
	valid := func(mod func(*Config)) Config {
		cfg := DefaultConfig()
		cfg.ServiceAccountPath = "/keys/sa.json"
		mod(&cfg)
		return cfg
	}

	tests := []struct {
		name    string
		errMsg  string
		target  error
		config  Config
		wantErr bool
	}{
		{
			name: "valid oauth config",
			config: valid(func(c *Config) {
				c.ServiceAccountPath = ""
				c.ClientID, c.ClientSecret, c.RefreshToken = "client", "secret", "token"
			}),
		},
		{
			name:   "valid service account config",
			config: valid(func(*Config) {}),
		},
		{
			name: "partial oauth credentials",
			config: valid(func(c *Config) {
				c.ServiceAccountPath = ""
				c.ClientID, c.RefreshToken = "client", "token"
			}),
			wantErr: true,
			target:  common.ErrMissingConfig,
			errMsg:  "no authentication method configured",
		},
		{
			name: "both auth methods",
			config: valid(func(c *Config) {
				c.ClientID, c.ClientSecret, c.RefreshToken = "client", "secret", "token"
			}),
			wantErr: true,
			target:  common.ErrInvalidConfig,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name:    "zero batch size",
			config:  valid(func(c *Config) { c.BatchSize = 0 }),
			wantErr: true,
			target:  common.ErrInvalidConfig,
			errMsg:  "batch size must be positive",
		},
		{
			name:    "negative retries",
			config:  valid(func(c *Config) { c.RetryAttempts = -1 }),
			wantErr: true,
			errMsg:  "retry attempts cannot be negative",
		},
		{
			name:    "negative delay",
			config:  valid(func(c *Config) { c.RetryDelay = -time.Second }),
			wantErr: true,
			errMsg:  "retry delay cannot be negative",
		},
		{
			name:    "unknown time zone",
			config:  valid(func(c *Config) { c.TimeZone = "Mars/Olympus" }),
			wantErr: true,
			errMsg:  `time zone "Mars/Olympus"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	err := (&Config{RetryAttempts: -1}).Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "batch size")
	assert.Contains(t, err.Error(), "retry attempts")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.EnableFormatting)
	assert.Equal(t, "Controle Financeiro", cfg.SpreadsheetName)
	assert.Equal(t, "R$", cfg.Currency)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, 3, cfg.RetryAttempts)
}

func testReport() service.Report {
	at := func(day int) time.Time { return time.Date(2024, time.February, day, 12, 0, 0, 0, time.Local) }
	txns := []model.Transaction{
		{ID: 1, Kind: model.KindIncome, Description: "Salário", Amount: 3000, RecordedAt: at(1)},
		{ID: 2, Kind: model.KindExpense, Description: "Mercado", Category: "Alimentação", Amount: 200, RecordedAt: at(3)},
		{ID: 3, Kind: model.KindExpense, Description: "Aluguel", Category: "Moradia", Amount: 1200, RecordedAt: at(5)},
		{ID: 4, Kind: model.KindExpense, Description: "Padaria", Category: "Alimentação", Amount: 50.1, RecordedAt: at(5)},
	}
	return service.Report{
		Filter:       period.Filter{Year: 2024, Month: time.February},
		Transactions: txns,
		Summary:      balance.Summarize(txns),
	}
}

func TestBuildLayout(t *testing.T) {
	report := testReport()
	lay := buildLayout(report)
	values := lay.values

	assert.Equal(t, []any{"Controle Financeiro", "Transações de Fevereiro/2024"}, values[0])
	assert.Equal(t, []any{"Resumo"}, values[2])
	assert.Equal(t, []any{"Total de Ganhos", 3000.0}, values[3])
	assert.Equal(t, []any{"Total de Despesas", 1450.1}, values[4])
	assert.Equal(t, []any{"Saldo", 1549.9}, values[5])
	assert.Equal(t, []any{"Transações", 4}, values[6])

	// Largest category first.
	assert.Equal(t, []any{"Moradia", 1, 1200.0}, values[10])
	assert.Equal(t, []any{"Alimentação", 2, 250.1}, values[11])

	details := values[len(values)-4:]
	assert.Equal(t, []any{"2024-02-05", "Despesa", "Padaria", "Alimentação", -50.1}, details[0])
	assert.Equal(t, []any{"2024-02-05", "Despesa", "Aluguel", "Moradia", -1200.0}, details[1])
	assert.Equal(t, []any{"2024-02-01", "Ganho", "Salário", "-", 3000.0}, details[3])

	assert.Equal(t, []int{2, 8, 9, 13, 14}, lay.headings)
	assert.Equal(t, []moneyColumn{
		{col: 1, from: 3, to: 6},
		{col: 2, from: 10, to: 12},
		{col: 4, from: 15, to: 19},
	}, lay.money)
	assert.Len(t, values, 19)

	// The caller's slice order is left alone.
	assert.Equal(t, int64(1), report.Transactions[0].ID)
}

func TestBuildLayout_Empty(t *testing.T) {
	lay := buildLayout(service.Report{})

	assert.Equal(t, "Todas as Transações Registradas", lay.values[0][1])
	assert.Equal(t, []any{"Data", "Tipo", "Descrição", "Categoria", "Valor"}, lay.values[len(lay.values)-1])
	assert.Equal(t, moneyColumn{col: 4, from: len(lay.values), to: len(lay.values)}, lay.money[2])
}

func TestFormatRequests(t *testing.T) {
	lay := buildLayout(testReport())
	requests := formatRequests(42, lay, "R$")

	// title, headings, three money columns, freeze, resize
	require.Len(t, requests, 1+len(lay.headings)+3+2)

	title := requests[0].RepeatCell
	require.NotNil(t, title)
	assert.Equal(t, int64(42), title.Range.SheetId)
	assert.Equal(t, int64(16), title.Cell.UserEnteredFormat.TextFormat.FontSize)

	money := requests[1+len(lay.headings)].RepeatCell
	require.NotNil(t, money)
	assert.Equal(t, int64(3), money.Range.StartRowIndex)
	assert.Equal(t, int64(6), money.Range.EndRowIndex)
	assert.Equal(t, int64(1), money.Range.StartColumnIndex)
	assert.Equal(t, "CURRENCY", money.Cell.UserEnteredFormat.NumberFormat.Type)

	freeze := requests[len(requests)-2].UpdateSheetProperties
	require.NotNil(t, freeze)
	assert.Equal(t, int64(1), freeze.Properties.GridProperties.FrozenRowCount)
	assert.NotNil(t, requests[len(requests)-1].AutoResizeDimensions)
}

func TestFormatRequests_SkipsEmptyMoneyColumns(t *testing.T) {
	lay := buildLayout(service.Report{})
	requests := formatRequests(0, lay, "R$")

	// The summary is the only non-empty money column.
	assert.Len(t, requests, 1+len(lay.headings)+1+2)
}

func TestTabTitle(t *testing.T) {
	tests := []struct {
		want   string
		filter period.Filter
	}{
		{filter: period.Filter{}, want: "Todos os Anos"},
		{filter: period.Filter{Year: 2024}, want: "2024"},
		{filter: period.Filter{Year: 2024, Month: time.February}, want: "Fevereiro 2024"},
		{filter: period.Filter{Month: time.March}, want: "Março (todos os anos)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TabTitle(tt.filter))
	}
}

func TestQuoteTab(t *testing.T) {
	assert.Equal(t, "'2024'", quoteTab("2024"))
	assert.Equal(t, "'Joe''s'", quoteTab("Joe's"))
}

func TestCurrencyPattern(t *testing.T) {
	assert.Equal(t, `"R$ "#,##0.00;[Red]-"R$ "#,##0.00`, currencyPattern("R$"))
	assert.Equal(t, `"$ "#,##0.00;[Red]-"$ "#,##0.00`, currencyPattern(""))
}

func TestMockWriter(t *testing.T) {
	mock := NewMockWriter()
	ctx := context.Background()

	require.NoError(t, mock.Write(ctx, testReport()))
	require.Len(t, mock.Reports(), 1)
	assert.Len(t, mock.Reports()[0].Transactions, 4)

	boom := errors.New("quota exceeded")
	mock.Err = boom
	assert.ErrorIs(t, mock.Write(ctx, service.Report{}), boom)
	assert.Len(t, mock.Reports(), 2)
}

func TestNewWriter_InvalidConfig(t *testing.T) {
	_, err := NewWriter(context.Background(), Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestNewWriter_MissingServiceAccountKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServiceAccountPath = t.TempDir() + "/missing.json"

	_, err := NewWriter(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service account key")
}

func TestClassifyAPIError(t *testing.T) {
	plain := errors.New("dial tcp: timeout")
	assert.Same(t, plain, classifyAPIError(plain))
	assert.NoError(t, classifyAPIError(nil))

	limited := classifyAPIError(&googleapi.Error{Code: 429})
	assert.ErrorIs(t, limited, common.ErrRateLimit)
	assert.True(t, common.IsRetryable(limited))

	assert.True(t, common.IsRetryable(classifyAPIError(&googleapi.Error{Code: 503})))
	assert.False(t, common.IsRetryable(classifyAPIError(&googleapi.Error{Code: 403})))
}
