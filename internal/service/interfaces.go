// Package service defines the interfaces shared by the ledger and its front-ends.
package service

import (
	"context"

	"github.com/Veraticus/ledger/internal/balance"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
)

// TransactionFilter defines filtering options for transaction queries.
// An empty Kind lists both incomes and expenses.
type TransactionFilter struct {
	Period period.Filter
	Kind   model.Kind
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	Add(ctx context.Context, txn model.NewTransaction) (int64, error)
	AddBatch(ctx context.Context, txns []model.NewTransaction) ([]int64, error)
	GetByID(ctx context.Context, id int64) (*model.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	Update(ctx context.Context, id int64, update model.Update) error
	Delete(ctx context.Context, id int64) (bool, error)
	DistinctYears(ctx context.Context) ([]int, error)
	Count(ctx context.Context) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Report is a filtered view of the ledger ready to be exported.
type Report struct {
	Filter       period.Filter
	Transactions []model.Transaction
	Summary      balance.Summary
}

// ReportWriter exports ledger reports to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, report Report) error
}
