package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdejong/budgeteer/internal/model"
)

func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func seedCategory(t *testing.T, store *SQLiteStorage, name string) *model.Category {
	t.Helper()
	cat, err := store.CreateCategory(context.Background(), name, model.CategoryTypeExpense)
	require.NoError(t, err)
	return cat
}

func seedTransaction(t *testing.T, store *SQLiteStorage, id string, amount float64) *model.Transaction {
	t.Helper()
	ctx := context.Background()

	txn := model.Transaction{
		ID:          id,
		Date:        time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Description: "Test transaction " + id,
		Amount:      amount,
		AccountID:   "checking",
	}
	txn.Hash = txn.GenerateHash()
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{txn}))

	stored, err := store.GetTransactionByID(ctx, id)
	require.NoError(t, err)
	return stored
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates missing parent directory", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Migrate(context.Background()))
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("")
		assert.Error(t, err)
	})
}

func TestBeginTxRollback(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := seedCategory(t, store, "Groceries")
	txn := seedTransaction(t, store, "txn-1", -42.50)

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	splits := []model.Split{{CategoryID: cat.ID, Amount: 42.50}}
	require.NoError(t, tx.UpdateSplits(ctx, txn.ID, splits, txn.Version))
	require.NoError(t, tx.Rollback())

	// Nothing from the rolled-back transaction is visible
	reloaded, err := store.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Splits)
	assert.Equal(t, txn.Version, reloaded.Version)
}
