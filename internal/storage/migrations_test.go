package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	t.Run("reaches expected schema version", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		var version int
		err := store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
		require.NoError(t, err)
		assert.Equal(t, ExpectedSchemaVersion, version)
	})

	t.Run("is idempotent", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		require.NoError(t, store.Migrate(ctx))
		require.NoError(t, store.Migrate(ctx))
	})

	t.Run("versions are sequential", func(t *testing.T) {
		for i, m := range migrations {
			assert.Equal(t, i+1, m.Version, "migration %q out of order", m.Description)
		}
	})

	t.Run("fresh database has all tables", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "fresh.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()
		require.NoError(t, store.Migrate(ctx))

		tables := []string{
			"transactions", "splits", "categories",
			"rules", "profile_counts", "profile_meta",
			"labeled_examples", "classifier_models", "audit_entries",
		}
		for _, table := range tables {
			var name string
			err := store.db.QueryRowContext(ctx,
				`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
			assert.NoError(t, err, "table %s missing", table)
		}
	})
}
