package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupManager snapshots and restores the ledger database.
type BackupManager struct {
	db         *sql.DB
	dbPath     string
	backupsDir string
}

// BackupMetadata is written next to each snapshot as <tag>.meta.json.
type BackupMetadata struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	FileSize      int64     `json:"file_size"`
	Transactions  int       `json:"transactions"`
	SchemaVersion int       `json:"schema_version"`
}

// Backup errors.
var (
	ErrBackupNotFound  = errors.New("backup not found")
	ErrBackupCorrupted = errors.New("backup integrity check failed")
	ErrBackupExists    = errors.New("backup already exists")
	ErrInvalidTag      = errors.New("invalid backup tag: cannot contain path separators")
)

// NewBackupManager creates a backup manager that keeps snapshots in a
// backups directory beside the database.
func NewBackupManager(db *sql.DB, dbPath string) (*BackupManager, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	backupsDir := filepath.Join(filepath.Dir(absPath), "backups")
	if err := os.MkdirAll(backupsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	return &BackupManager{
		db:         db,
		dbPath:     absPath,
		backupsDir: backupsDir,
	}, nil
}

// Dir returns the directory holding the snapshots.
func (bm *BackupManager) Dir() string {
	return bm.backupsDir
}

// Create snapshots the live database under tag. An empty tag is replaced with
// a timestamped one.
func (bm *BackupManager) Create(ctx context.Context, tag, description string) (*BackupMetadata, error) {
	if tag == "" {
		tag = fmt.Sprintf("backup-%s", time.Now().Format("2006-01-02-150405"))
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	backupPath := bm.snapshotPath(tag)
	if _, err := os.Stat(backupPath); err == nil {
		return nil, ErrBackupExists
	}

	var schemaVersion int
	if err := bm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	var count int
	if err := bm.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	if err := bm.vacuumInto(ctx, backupPath); err != nil {
		return nil, fmt.Errorf("failed to backup database: %w", err)
	}

	info, err := os.Stat(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}

	metadata := BackupMetadata{
		ID:            tag,
		CreatedAt:     time.Now(),
		Description:   description,
		FileSize:      info.Size(),
		Transactions:  count,
		SchemaVersion: schemaVersion,
	}

	if err := bm.saveMetadata(bm.metadataPath(tag), metadata); err != nil {
		if rmErr := os.Remove(backupPath); rmErr != nil {
			slog.Error("failed to remove backup file after metadata save failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	if err := bm.storeMetadataInDB(ctx, metadata); err != nil {
		// The snapshot is still usable without the row.
		slog.Warn("failed to store backup metadata in database", "error", err)
	}

	slog.Info("Created backup", "id", tag, "transactions", count, "size", metadata.FileSize)
	return &metadata, nil
}

// List returns every backup, newest first. Unreadable sidecars are skipped.
func (bm *BackupManager) List(_ context.Context) ([]BackupMetadata, error) {
	entries, err := os.ReadDir(bm.backupsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	backups := make([]BackupMetadata, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}

		metadata, err := bm.loadMetadata(filepath.Join(bm.backupsDir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable backup metadata", "file", entry.Name(), "error", err)
			continue
		}
		backups = append(backups, *metadata)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Restore copies the snapshot tag over the live database file. The storage
// that owns the connection must not be used afterwards; reopen it instead.
func (bm *BackupManager) Restore(_ context.Context, tag string) error {
	if err := validateTag(tag); err != nil {
		return err
	}

	backupPath := bm.snapshotPath(tag)
	if _, err := os.Stat(backupPath); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return fmt.Errorf("failed to access backup: %w", err)
	}

	if _, err := bm.loadMetadata(bm.metadataPath(tag)); err != nil {
		return fmt.Errorf("failed to load backup metadata: %w", err)
	}

	if err := verifyIntegrity(backupPath); err != nil {
		return fmt.Errorf("%w: %v", ErrBackupCorrupted, err)
	}

	if err := bm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	// WAL side files belong to the replaced database.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(bm.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove sqlite side file", "file", bm.dbPath+suffix, "error", err)
		}
	}

	safetyPath := bm.dbPath + ".restore-backup"
	if err := copyFile(bm.dbPath, safetyPath); err != nil {
		return fmt.Errorf("failed to backup current database: %w", err)
	}

	if err := copyFile(backupPath, bm.dbPath); err != nil {
		if restoreErr := copyFile(safetyPath, bm.dbPath); restoreErr != nil {
			slog.Error("failed to put back database after restore failure", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore backup: %w", err)
	}

	if err := os.Remove(safetyPath); err != nil {
		slog.Error("failed to remove safety copy", "error", err)
	}

	slog.Info("Restored backup", "id", tag)
	return nil
}

// Delete removes a backup and its metadata.
func (bm *BackupManager) Delete(ctx context.Context, tag string) error {
	if err := validateTag(tag); err != nil {
		return err
	}

	backupPath := bm.snapshotPath(tag)
	if _, err := os.Stat(backupPath); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return fmt.Errorf("failed to access backup: %w", err)
	}

	if err := os.Remove(backupPath); err != nil {
		return fmt.Errorf("failed to remove backup file: %w", err)
	}

	if err := os.Remove(bm.metadataPath(tag)); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "id", tag)
	}

	if _, err := bm.db.ExecContext(ctx, "DELETE FROM backup_metadata WHERE id = ?", tag); err != nil {
		slog.Debug("failed to remove backup metadata from database", "error", err, "id", tag)
	}

	return nil
}

func validateTag(tag string) error {
	if strings.ContainsAny(tag, `/\'";`) || strings.Contains(tag, "..") {
		return ErrInvalidTag
	}
	return nil
}

func (bm *BackupManager) snapshotPath(tag string) string {
	return filepath.Join(bm.backupsDir, tag+".db")
}

func (bm *BackupManager) metadataPath(tag string) string {
	return filepath.Join(bm.backupsDir, tag+".meta.json")
}

func (bm *BackupManager) vacuumInto(ctx context.Context, destPath string) error {
	if _, err := bm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	if strings.ContainsAny(destPath, `'";`) {
		return fmt.Errorf("invalid destination path: contains forbidden characters")
	}
	if !filepath.IsAbs(destPath) {
		return fmt.Errorf("invalid destination path")
	}

	// #nosec G201 - destPath is validated above
	if _, err := bm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", destPath)); err != nil {
		slog.Debug("VACUUM INTO failed, falling back to file copy", "error", err)
		return copyFile(bm.dbPath, destPath)
	}
	return nil
}

func (bm *BackupManager) saveMetadata(path string, metadata BackupMetadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (bm *BackupManager) loadMetadata(path string) (*BackupMetadata, error) {
	// #nosec G304 - path is built from the backups directory and a validated tag
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var metadata BackupMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

func (bm *BackupManager) storeMetadataInDB(ctx context.Context, metadata BackupMetadata) error {
	_, err := bm.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO backup_metadata
		(id, created_at, description, file_size, row_count, schema_version)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		metadata.ID,
		metadata.CreatedAt.Format(recordedAtLayout),
		metadata.Description,
		metadata.FileSize,
		metadata.Transactions,
		metadata.SchemaVersion,
	)
	return err
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

func copyFile(src, dst string) error {
	// #nosec G304 - src is the database or a snapshot path
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			slog.Error("failed to close source file", "error", closeErr)
		}
	}()

	tmpDst := dst + ".tmp"
	// #nosec G304 - tmpDst is derived from a trusted destination
	destination, err := os.Create(tmpDst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmpDst)
		return err
	}

	if err := destination.Close(); err != nil {
		_ = os.Remove(tmpDst)
		return err
	}

	return os.Rename(tmpDst, dst)
}
