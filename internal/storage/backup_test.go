package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBackupManager(t *testing.T) (*SQLiteStorage, *BackupManager) {
	t.Helper()
	store, cleanup := createTestStorage(t)
	t.Cleanup(cleanup)

	bm, err := store.NewBackupManager()
	require.NoError(t, err)
	return store, bm
}

func TestBackupManager_Create(t *testing.T) {
	store, bm := setupBackupManager(t)
	ctx := context.Background()

	_, err := store.Add(ctx, newIncome("Salary", 100, time.Now()))
	require.NoError(t, err)

	meta, err := bm.Create(ctx, "before-import", "manual snapshot")
	require.NoError(t, err)

	assert.Equal(t, "before-import", meta.ID)
	assert.Equal(t, "manual snapshot", meta.Description)
	assert.Equal(t, 1, meta.Transactions)
	assert.Equal(t, ExpectedSchemaVersion, meta.SchemaVersion)
	assert.Positive(t, meta.FileSize)

	assert.FileExists(t, filepath.Join(bm.Dir(), "before-import.db"))
	assert.FileExists(t, filepath.Join(bm.Dir(), "before-import.meta.json"))

	var rows int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM backup_metadata WHERE id = ?`, "before-import").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestBackupManager_CreateGeneratesTag(t *testing.T) {
	_, bm := setupBackupManager(t)

	meta, err := bm.Create(context.Background(), "", "")
	require.NoError(t, err)
	assert.Contains(t, meta.ID, "backup-")
}

func TestBackupManager_CreateRejectsDuplicatesAndBadTags(t *testing.T) {
	_, bm := setupBackupManager(t)
	ctx := context.Background()

	_, err := bm.Create(ctx, "dup", "")
	require.NoError(t, err)

	_, err = bm.Create(ctx, "dup", "")
	assert.ErrorIs(t, err, ErrBackupExists)

	for _, tag := range []string{"../escape", "a/b", `a\b`, "it's"} {
		_, err = bm.Create(ctx, tag, "")
		assert.ErrorIs(t, err, ErrInvalidTag, tag)
	}
}

func TestBackupManager_ListNewestFirst(t *testing.T) {
	_, bm := setupBackupManager(t)
	ctx := context.Background()

	_, err := bm.Create(ctx, "first", "")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = bm.Create(ctx, "second", "")
	require.NoError(t, err)

	// A broken sidecar is skipped.
	require.NoError(t, os.WriteFile(filepath.Join(bm.Dir(), "junk.meta.json"), []byte("{"), 0600))

	backups, err := bm.List(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, "second", backups[0].ID)
	assert.Equal(t, "first", backups[1].ID)
}

func TestBackupManager_Restore(t *testing.T) {
	store, bm := setupBackupManager(t)
	ctx := context.Background()
	dbPath := store.Path()

	_, err := store.Add(ctx, newIncome("kept", 100, time.Now()))
	require.NoError(t, err)

	_, err = bm.Create(ctx, "snap", "")
	require.NoError(t, err)

	_, err = store.Add(ctx, newIncome("lost", 50, time.Now()))
	require.NoError(t, err)

	require.NoError(t, bm.Restore(ctx, "snap"))

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.Migrate(ctx))

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBackupManager_RestoreMissing(t *testing.T) {
	_, bm := setupBackupManager(t)

	err := bm.Restore(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBackupNotFound)
}

func TestBackupManager_Delete(t *testing.T) {
	_, bm := setupBackupManager(t)
	ctx := context.Background()

	_, err := bm.Create(ctx, "old", "")
	require.NoError(t, err)

	require.NoError(t, bm.Delete(ctx, "old"))
	assert.NoFileExists(t, filepath.Join(bm.Dir(), "old.db"))

	backups, err := bm.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, backups)

	assert.ErrorIs(t, bm.Delete(ctx, "old"), ErrBackupNotFound)
}
