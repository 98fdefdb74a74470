package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/model"
	"github.com/mdejong/budgeteer/internal/storage"
)

// autoApplyTestCase auto-applies one transaction through the sweep so the
// undo path sees the exact entries production writes.
func autoApplyTestCase(t *testing.T, store *storage.SQLiteStorage) *model.Transaction {
	t.Helper()
	ctx := context.Background()

	cat := seedCategory(t, store, "Groceries")
	seedRule(t, store, "albert heijn", cat.ID)
	txn := seedTransaction(t, store, "txn-1", "ALBERT HEIJN 1403", -23.45)

	orchestrator := newTestOrchestrator(store, DefaultConfig())
	stats, err := orchestrator.RunSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Applied)

	applied, err := store.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	require.True(t, applied.IsAssigned())
	return applied
}

func TestUndo(t *testing.T) {
	ctx := context.Background()

	t.Run("reverts an auto-applied assignment", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		txn := autoApplyTestCase(t, store)

		coordinator := NewUndoCoordinator(store, 30)
		require.NoError(t, coordinator.Undo(ctx, txn.ID, "alex"))

		reloaded, err := store.GetTransactionByID(ctx, txn.ID)
		require.NoError(t, err)
		assert.Empty(t, reloaded.Splits)

		// The undo itself is audited
		entries, err := store.AuditEntriesByTransaction(ctx, txn.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, model.ActionUndo, entries[0].Action)
		assert.Equal(t, "alex", entries[0].Actor)
	})

	t.Run("second undo is not found", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		txn := autoApplyTestCase(t, store)

		coordinator := NewUndoCoordinator(store, 30)
		require.NoError(t, coordinator.Undo(ctx, txn.ID, "alex"))

		err := coordinator.Undo(ctx, txn.ID, "alex")
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.ErrorContains(t, err, "already undone")
	})

	t.Run("never auto-applied is not found", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		seedTransaction(t, store, "txn-manual", "MANUAL ONLY", -10.00)

		coordinator := NewUndoCoordinator(store, 30)
		err := coordinator.Undo(ctx, "txn-manual", "alex")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("manual edit after auto-apply conflicts", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		txn := autoApplyTestCase(t, store)

		// The user re-assigned by hand after the sweep ran
		other := seedCategory(t, store, "Household")
		orchestrator := newTestOrchestrator(store, DefaultConfig())
		require.NoError(t, orchestrator.Assign(ctx, txn.ID,
			[]model.Split{{CategoryID: other.ID, Amount: 23.45}}, "alex", "corrected"))

		coordinator := NewUndoCoordinator(store, 30)
		err := coordinator.Undo(ctx, txn.ID, "alex")
		assert.ErrorIs(t, err, common.ErrConflict)
		assert.ErrorContains(t, err, "manually edited")

		// The manual assignment stays untouched
		reloaded, err := store.GetTransactionByID(ctx, txn.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Splits, 1)
		assert.Equal(t, other.ID, reloaded.Splits[0].CategoryID)
	})

	t.Run("retention window expired", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		txn := seedTransaction(t, store, "txn-old", "ALBERT HEIJN", -23.45)

		// An auto-apply from 45 days ago, written directly
		require.NoError(t, store.AppendAuditEntry(ctx, &model.AuditEntry{
			TransactionID: txn.ID,
			Action:        model.ActionAutoApply,
			Actor:         AutoActor,
			AutoApplied:   true,
			CreatedAt:     time.Now().UTC().AddDate(0, 0, -45),
		}))

		coordinator := NewUndoCoordinator(store, 30)
		err := coordinator.Undo(ctx, txn.ID, "alex")
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.ErrorContains(t, err, "retention window expired")
	})

	t.Run("requires an actor", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		coordinator := NewUndoCoordinator(store, 30)
		err := coordinator.Undo(ctx, "txn-1", "")
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestCanUndo(t *testing.T) {
	ctx := context.Background()

	t.Run("true for a fresh auto-apply", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		txn := autoApplyTestCase(t, store)

		coordinator := NewUndoCoordinator(store, 30)
		ok, err := coordinator.CanUndo(ctx, txn.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("false after an undo, without error", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		txn := autoApplyTestCase(t, store)

		coordinator := NewUndoCoordinator(store, 30)
		require.NoError(t, coordinator.Undo(ctx, txn.ID, "alex"))

		ok, err := coordinator.CanUndo(ctx, txn.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("false for an unknown transaction", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		coordinator := NewUndoCoordinator(store, 30)
		ok, err := coordinator.CanUndo(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
