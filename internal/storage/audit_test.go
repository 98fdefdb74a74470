package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/model"
)

func TestAppendAuditEntry(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	confidence := 0.87
	entry := &model.AuditEntry{
		TransactionID: "txn-1",
		Action:        model.ActionAutoApply,
		Actor:         "auto-apply",
		Before:        json.RawMessage(`{"splits":[]}`),
		After:         json.RawMessage(`{"splits":[{"category_id":2}]}`),
		Reason:        "confidence 0.87 from model",
		AutoApplied:   true,
		Confidence:    &confidence,
	}
	require.NoError(t, store.AppendAuditEntry(ctx, entry))
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	entries, err := store.AuditEntriesByTransaction(ctx, "txn-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActionAutoApply, entries[0].Action)
	assert.JSONEq(t, `{"splits":[]}`, string(entries[0].Before))
	require.NotNil(t, entries[0].Confidence)
	assert.Equal(t, 0.87, *entries[0].Confidence)
}

func TestAppendAuditEntryValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name  string
		entry *model.AuditEntry
	}{
		{"missing transaction", &model.AuditEntry{Action: model.ActionAssign, Actor: "cli"}},
		{"unknown action", &model.AuditEntry{TransactionID: "t", Action: "DELETE", Actor: "cli"}},
		{"missing actor", &model.AuditEntry{TransactionID: "t", Action: model.ActionAssign}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.AppendAuditEntry(ctx, tt.entry))
		})
	}
}

func TestLatestAutoApplyEntry(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("not found without auto-apply", func(t *testing.T) {
		require.NoError(t, store.AppendAuditEntry(ctx, &model.AuditEntry{
			TransactionID: "txn-manual",
			Action:        model.ActionAssign,
			Actor:         "cli",
		}))

		_, err := store.LatestAutoApplyEntry(ctx, "txn-manual")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("picks the most recent", func(t *testing.T) {
		older := &model.AuditEntry{
			TransactionID: "txn-1",
			Action:        model.ActionAutoApply,
			Actor:         "auto-apply",
			AutoApplied:   true,
			CreatedAt:     time.Now().UTC().Add(-2 * time.Hour),
		}
		newer := &model.AuditEntry{
			TransactionID: "txn-1",
			Action:        model.ActionAutoApply,
			Actor:         "auto-apply",
			AutoApplied:   true,
			CreatedAt:     time.Now().UTC().Add(-time.Hour),
		}
		require.NoError(t, store.AppendAuditEntry(ctx, older))
		require.NoError(t, store.AppendAuditEntry(ctx, newer))

		latest, err := store.LatestAutoApplyEntry(ctx, "txn-1")
		require.NoError(t, err)
		assert.Equal(t, newer.ID, latest.ID)
	})
}

func TestAuditEntriesByTransactionOrdering(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, action := range []model.AuditAction{model.ActionAutoApply, model.ActionUndo, model.ActionAssign} {
		require.NoError(t, store.AppendAuditEntry(ctx, &model.AuditEntry{
			TransactionID: "txn-1",
			Action:        action,
			Actor:         "cli",
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := store.AuditEntriesByTransaction(ctx, "txn-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first
	assert.Equal(t, model.ActionAssign, entries[0].Action)
	assert.Equal(t, model.ActionUndo, entries[1].Action)
	assert.Equal(t, model.ActionAutoApply, entries[2].Action)
}

func TestAuditEntriesInWindow(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	inside := &model.AuditEntry{
		TransactionID: "txn-1",
		Action:        model.ActionAutoApply,
		Actor:         "auto-apply",
		CreatedAt:     time.Now().UTC().Add(-24 * time.Hour),
	}
	outside := &model.AuditEntry{
		TransactionID: "txn-2",
		Action:        model.ActionAutoApply,
		Actor:         "auto-apply",
		CreatedAt:     time.Now().UTC().AddDate(0, 0, -45),
	}
	require.NoError(t, store.AppendAuditEntry(ctx, inside))
	require.NoError(t, store.AppendAuditEntry(ctx, outside))

	entries, err := store.AuditEntriesInWindow(ctx, 30)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "txn-1", entries[0].TransactionID)

	_, err = store.AuditEntriesInWindow(ctx, 0)
	assert.ErrorIs(t, err, common.ErrValidation)
}
