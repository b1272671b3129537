package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/service"
)

// recordedAtLayout is the zone-less wall clock stored in recorded_at.
const recordedAtLayout = "2006-01-02 15:04:05"

const selectColumns = `SELECT id, kind, description, amount, category, recorded_at FROM transactions`

// Add inserts one transaction and returns its id.
func (s *SQLiteStorage) Add(ctx context.Context, txn model.NewTransaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateNewTransaction(txn); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, common.NewStorageError("begin add", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := s.insertTx(ctx, tx, txn)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, common.NewStorageError("commit add", err)
	}

	slog.Debug("Added transaction", "id", id, "kind", txn.Kind, "amount", txn.Amount)
	return id, nil
}

// AddBatch inserts every transaction in a single database transaction. Either
// all rows are stored or none are.
func (s *SQLiteStorage) AddBatch(ctx context.Context, txns []model.NewTransaction) ([]int64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateNewTransactions(txns); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewStorageError("begin batch", err)
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]int64, 0, len(txns))
	for _, txn := range txns {
		id, insertErr := s.insertTx(ctx, tx, txn)
		if insertErr != nil {
			return nil, insertErr
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.NewStorageError("commit batch", err)
	}

	slog.Debug("Added transaction batch", "count", len(ids))
	return ids, nil
}

func (s *SQLiteStorage) insertTx(ctx context.Context, tx *sql.Tx, txn model.NewTransaction) (int64, error) {
	recordedAt := txn.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (kind, description, amount, category, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		string(txn.Kind),
		txn.Description,
		txn.Amount,
		categoryValue(txn.Kind, txn.Category),
		recordedAt.Format(recordedAtLayout),
	)
	if err != nil {
		return 0, common.NewStorageError("insert transaction", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, common.NewStorageError("read inserted id", err)
	}
	return id, nil
}

// GetByID returns the transaction with the given id, or a *common.NotFoundError.
func (s *SQLiteStorage) GetByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, &common.NotFoundError{ID: id}
	}

	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &common.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, common.NewStorageError("get transaction", err)
	}
	return &txn, nil
}

// List returns the transactions matching filter, newest first. Rows recorded
// at the same instant are ordered by descending id.
func (s *SQLiteStorage) List(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, common.NewValidationError("kind", fmt.Sprintf("unknown kind %q", filter.Kind))
	}

	var (
		conds []string
		args  []any
	)
	if where, periodArgs := filter.Period.SQL("recorded_at"); where != "" {
		conds = append(conds, where)
		args = append(args, periodArgs...)
	}
	if filter.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(filter.Kind))
	}

	query := selectColumns
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY recorded_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewStorageError("list transactions", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, common.NewStorageError("scan transaction", scanErr)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate transactions", err)
	}

	return txns, nil
}

// Update replaces the editable fields of an existing transaction. The
// category of an income row is always cleared.
func (s *SQLiteStorage) Update(ctx context.Context, id int64, update model.Update) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return &common.NotFoundError{ID: id}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewStorageError("begin update", err)
	}
	defer func() { _ = tx.Rollback() }()

	var kind string
	err = tx.QueryRowContext(ctx, `SELECT kind FROM transactions WHERE id = ?`, id).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return &common.NotFoundError{ID: id}
	}
	if err != nil {
		return common.NewStorageError("load transaction kind", err)
	}

	if err := validateUpdate(model.Kind(kind), update); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE transactions
		SET description = ?, amount = ?, category = ?
		WHERE id = ?
	`,
		update.Description,
		update.Amount,
		categoryValue(model.Kind(kind), update.Category),
		id,
	)
	if err != nil {
		return common.NewStorageError("update transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return common.NewStorageError("commit update", err)
	}

	slog.Debug("Updated transaction", "id", id)
	return nil
}

// Delete removes a transaction. It reports false, not an error, when the id
// does not exist.
func (s *SQLiteStorage) Delete(ctx context.Context, id int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if validateID(id) != nil {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, common.NewStorageError("begin delete", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, common.NewStorageError("delete transaction", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, common.NewStorageError("read affected rows", err)
	}

	if err := tx.Commit(); err != nil {
		return false, common.NewStorageError("commit delete", err)
	}

	if affected > 0 {
		slog.Debug("Deleted transaction", "id", id)
	}
	return affected > 0, nil
}

// DistinctYears returns every year that has at least one transaction, newest
// first.
func (s *SQLiteStorage) DistinctYears(ctx context.Context) ([]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT strftime('%Y', recorded_at) AS year
		FROM transactions
		WHERE recorded_at IS NOT NULL
		ORDER BY year DESC
	`)
	if err != nil {
		return nil, common.NewStorageError("list years", err)
	}
	defer func() { _ = rows.Close() }()

	var years []int
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, common.NewStorageError("scan year", err)
		}
		if !raw.Valid {
			continue
		}
		year, convErr := strconv.Atoi(raw.String)
		if convErr != nil {
			return nil, common.NewStorageError("parse year", convErr)
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate years", err)
	}

	return years, nil
}

// Count returns the number of stored transactions.
func (s *SQLiteStorage) Count(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, common.NewStorageError("count transactions", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn        model.Transaction
		kind       string
		category   sql.NullString
		recordedAt sql.NullTime
	)

	if err := row.Scan(&txn.ID, &kind, &txn.Description, &txn.Amount, &category, &recordedAt); err != nil {
		return model.Transaction{}, err
	}

	txn.Kind = model.Kind(kind)
	txn.Category = category.String
	if recordedAt.Valid {
		txn.RecordedAt = wallClock(recordedAt.Time)
	}
	return txn, nil
}

// wallClock reinterprets a timestamp the driver decoded as UTC in the local
// zone, keeping the stored calendar fields.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
}

func categoryValue(kind model.Kind, category string) any {
	if kind != model.KindExpense {
		return nil
	}
	return category
}
