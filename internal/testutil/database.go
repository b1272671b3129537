// Package testutil provides test helpers shared by packages that need a real,
// migrated ledger database.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/ledger/internal/ledger"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	Ledger  *ledger.Service
	t       *testing.T
}

// TestDBOptions tweaks SetupTestDBWithOptions.
type TestDBOptions struct {
	Seed   []model.NewTransaction
	Config ledger.Config
}

// SetupLedger creates a migrated database in a temp directory and a ledger
// service with the default configuration.
//
// Example:
//
//	db := testutil.SetupLedger(t)
//	id := db.MustAdd(testutil.Income("Salary", 1000, testutil.Date(2024, 2, 5)))
func SetupLedger(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Config: ledger.DefaultConfig()})
}

// SetupTestDBWithOptions creates a test database with a custom service
// configuration and optional seed rows.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{
		Storage: store,
		Ledger:  ledger.NewWithConfig(store, opts.Config),
		t:       t,
	}
	for _, txn := range opts.Seed {
		db.MustAdd(txn)
	}
	return db
}

// MustAdd stores txn or fails the test.
func (db *TestDB) MustAdd(txn model.NewTransaction) int64 {
	db.t.Helper()
	id, err := db.Storage.Add(context.Background(), txn)
	if err != nil {
		db.t.Fatalf("failed to add %q: %v", txn.Description, err)
	}
	return id
}

// Date builds a local noon timestamp.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.Local)
}

// Income builds an income request.
func Income(description string, amount float64, at time.Time) model.NewTransaction {
	return model.NewTransaction{Kind: model.KindIncome, Description: description, Amount: amount, RecordedAt: at}
}

// Expense builds an expense request.
func Expense(description, category string, amount float64, at time.Time) model.NewTransaction {
	return model.NewTransaction{Kind: model.KindExpense, Description: description, Category: category, Amount: amount, RecordedAt: at}
}
