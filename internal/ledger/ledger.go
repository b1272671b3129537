// Package ledger implements the operations every front-end calls: recording
// incomes and expenses, installment plans, listing, editing and balances.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/ledger/internal/balance"
	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/installment"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
	"github.com/Veraticus/ledger/internal/service"
)

// Service orchestrates the ledger store.
type Service struct {
	storage service.Storage
	now     func() time.Time
	config  Config
}

// Config holds configuration options for the ledger service.
type Config struct {
	// AtomicInstallments stores an installment plan in one database
	// transaction. When false each installment is inserted on its own and a
	// failure leaves the earlier ones in place.
	AtomicInstallments bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		AtomicInstallments: true,
	}
}

// New creates a ledger service with the default configuration.
func New(storage service.Storage) *Service {
	return NewWithConfig(storage, DefaultConfig())
}

// NewWithConfig creates a ledger service with custom configuration.
func NewWithConfig(storage service.Storage, config Config) *Service {
	return &Service{
		storage: storage,
		config:  config,
		now:     time.Now,
	}
}

// AddIncome records money coming in. A zero at means now.
func (s *Service) AddIncome(ctx context.Context, description string, amount float64, at time.Time) (int64, error) {
	return s.storage.Add(ctx, model.NewTransaction{
		Kind:        model.KindIncome,
		Description: description,
		Amount:      amount,
		RecordedAt:  s.orNow(at),
	})
}

// AddExpense records money going out. Category is required.
func (s *Service) AddExpense(ctx context.Context, description, category string, amount float64, at time.Time) (int64, error) {
	return s.storage.Add(ctx, model.NewTransaction{
		Kind:        model.KindExpense,
		Description: description,
		Category:    category,
		Amount:      amount,
		RecordedAt:  s.orNow(at),
	})
}

// AddInstallments expands plan and stores one expense per installment,
// returning their ids in due order.
func (s *Service) AddInstallments(ctx context.Context, plan installment.Plan) ([]int64, error) {
	txns, err := installment.Expand(plan)
	if err != nil {
		return nil, err
	}

	if s.config.AtomicInstallments {
		ids, err := s.storage.AddBatch(ctx, txns)
		if err != nil {
			return nil, fmt.Errorf("failed to store installments: %w", err)
		}
		slog.Info("Stored installment plan",
			"description", plan.Description,
			"count", plan.Count,
			"amount", plan.Amount)
		return ids, nil
	}

	ids := make([]int64, 0, len(txns))
	for _, txn := range txns {
		id, err := s.storage.Add(ctx, txn)
		if err != nil {
			slog.Warn("Installment plan stopped part way",
				"description", plan.Description,
				"inserted", len(ids),
				"total", len(txns),
				"error", err)
			return ids, &common.PartialBatchError{Err: err, Inserted: ids, Total: len(txns)}
		}
		ids = append(ids, id)
	}

	slog.Info("Stored installment plan",
		"description", plan.Description,
		"count", plan.Count,
		"amount", plan.Amount,
		"atomic", false)
	return ids, nil
}

// Get returns a single transaction.
func (s *Service) Get(ctx context.Context, id int64) (*model.Transaction, error) {
	return s.storage.GetByID(ctx, id)
}

// List returns the transactions in the period, newest first.
func (s *Service) List(ctx context.Context, filter period.Filter) ([]model.Transaction, error) {
	return s.storage.List(ctx, service.TransactionFilter{Period: filter})
}

// ListByKind returns only incomes or only expenses in the period.
func (s *Service) ListByKind(ctx context.Context, filter period.Filter, kind model.Kind) ([]model.Transaction, error) {
	return s.storage.List(ctx, service.TransactionFilter{Period: filter, Kind: kind})
}

// Update edits description, amount and category of a transaction.
func (s *Service) Update(ctx context.Context, id int64, update model.Update) error {
	return s.storage.Update(ctx, id, update)
}

// Delete removes a transaction and reports whether it existed.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.storage.Delete(ctx, id)
}

// Years returns the years that have transactions, newest first.
func (s *Service) Years(ctx context.Context) ([]int, error) {
	return s.storage.DistinctYears(ctx)
}

// Summarize totals the same rows List returns for filter.
func (s *Service) Summarize(ctx context.Context, filter period.Filter) (balance.Summary, error) {
	txns, err := s.List(ctx, filter)
	if err != nil {
		return balance.Summary{}, err
	}
	return balance.Summarize(txns), nil
}

// Report collects the rows and totals of a period for export.
func (s *Service) Report(ctx context.Context, filter period.Filter) (service.Report, error) {
	txns, err := s.List(ctx, filter)
	if err != nil {
		return service.Report{}, err
	}
	return service.Report{
		Filter:       filter,
		Transactions: txns,
		Summary:      balance.Summarize(txns),
	}, nil
}

// Import stores parsed statement rows in one batch. An empty batch is a no-op.
func (s *Service) Import(ctx context.Context, txns []model.NewTransaction) ([]int64, error) {
	if len(txns) == 0 {
		return nil, nil
	}

	ids, err := s.storage.AddBatch(ctx, txns)
	if err != nil {
		return nil, fmt.Errorf("failed to import transactions: %w", err)
	}

	slog.Info("Imported transactions", "count", len(ids))
	return ids, nil
}

func (s *Service) orNow(at time.Time) time.Time {
	if at.IsZero() {
		return s.now()
	}
	return at
}
