package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledger/internal/common"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// LegacyTable is the table of the console program this ledger replaces. When
// a database still has it, migration 3 copies its rows into transactions.
const LegacyTable = "transacoes_tb"

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial ledger schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					kind TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
					description TEXT NOT NULL,
					amount REAL NOT NULL CHECK (amount > 0),
					category TEXT,
					recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_recorded_at ON transactions(recorded_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add backup metadata",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS backup_metadata (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					description TEXT,
					file_size INTEGER,
					row_count INTEGER,
					schema_version INTEGER
				)
			`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Adopt rows from " + LegacyTable,
		Up:          adoptLegacyRows,
	},
}

// adoptLegacyRows copies legacy rows in id order. 'ganho' rows become income
// without category; anything else is an expense, filed under
// uncategorizedLegacy when it has no category. Rows with a non-positive value
// are skipped. The legacy table itself is left untouched.
func adoptLegacyRows(tx *sql.Tx) error {
	var n int
	err := tx.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, LegacyTable).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to look for %s: %w", LegacyTable, err)
	}
	if n == 0 {
		return nil
	}

	result, err := tx.Exec(`
		INSERT INTO transactions (kind, description, amount, category, recorded_at)
		SELECT
			CASE WHEN lower(tipo) = 'ganho' THEN 'income' ELSE 'expense' END,
			descricao,
			valor,
			CASE WHEN lower(tipo) = 'ganho' THEN NULL
				ELSE COALESCE(NULLIF(trim(categoria), ''), ?) END,
			COALESCE(strftime('%Y-%m-%d %H:%M:%S', data_registro), strftime('%Y-%m-%d %H:%M:%S', 'now', 'localtime'))
		FROM `+LegacyTable+`
		WHERE valor > 0
		ORDER BY id`, uncategorizedLegacy)
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", LegacyTable, err)
	}

	copied, _ := result.RowsAffected()
	slog.Info("Adopted legacy transactions", "table", LegacyTable, "rows", copied)
	return nil
}

const uncategorizedLegacy = "Sem categoria"

// Migrate brings the schema up to ExpectedSchemaVersion. It is safe to call
// on every start.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		if err := s.applyMigration(ctx, migration); err != nil {
			return err
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

func (s *SQLiteStorage) applyMigration(ctx context.Context, migration Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewStorageError("begin migration", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := migration.Up(tx); err != nil {
		return common.NewStorageError(fmt.Sprintf("migration %d", migration.Version), err)
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
		return common.NewStorageError("update schema version", err)
	}

	if err := tx.Commit(); err != nil {
		return common.NewStorageError(fmt.Sprintf("commit migration %d", migration.Version), err)
	}
	return nil
}

// SchemaVersion reports the applied migration version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, common.NewStorageError("read schema version", err)
	}
	return version, nil
}
