package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/model"
)

func TestCreateClassifierModelVersions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	metrics := model.ModelMetrics{Accuracy: 0.9, F1: 0.94, Examples: 10, Categories: 2}

	first, err := store.CreateClassifierModel(ctx, []byte(`{"a":1}`), metrics, false)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	second, err := store.CreateClassifierModel(ctx, []byte(`{"a":2}`), metrics, false)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)

	third, err := store.CreateClassifierModel(ctx, []byte(`{"a":3}`), metrics, true)
	require.NoError(t, err)
	assert.Equal(t, 3, third.Version)
	assert.True(t, third.Archived)
}

func TestGetActiveClassifierModel(t *testing.T) {
	ctx := context.Background()
	metrics := model.ModelMetrics{Accuracy: 0.9, F1: 0.94}

	t.Run("no models", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, err := store.GetActiveClassifierModel(ctx)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("highest non-archived version wins", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, err := store.CreateClassifierModel(ctx, []byte(`{"a":1}`), metrics, false)
		require.NoError(t, err)
		_, err = store.CreateClassifierModel(ctx, []byte(`{"a":2}`), metrics, false)
		require.NoError(t, err)
		// Version 3 failed the approval gate and was stored archived
		_, err = store.CreateClassifierModel(ctx, []byte(`{"a":3}`), metrics, true)
		require.NoError(t, err)

		active, err := store.GetActiveClassifierModel(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, active.Version)
		assert.Equal(t, []byte(`{"a":2}`), active.Payload)
		assert.Equal(t, 0.94, active.Metrics.F1)
	})

	t.Run("archiving the active version shifts activity down", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, err := store.CreateClassifierModel(ctx, []byte(`{"a":1}`), metrics, false)
		require.NoError(t, err)
		_, err = store.CreateClassifierModel(ctx, []byte(`{"a":2}`), metrics, false)
		require.NoError(t, err)

		require.NoError(t, store.SetClassifierModelArchived(ctx, 2, true))

		active, err := store.GetActiveClassifierModel(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, active.Version)

		// Unarchiving brings it back
		require.NoError(t, store.SetClassifierModelArchived(ctx, 2, false))
		active, err = store.GetActiveClassifierModel(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, active.Version)
	})

	t.Run("all archived means no active model", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, err := store.CreateClassifierModel(ctx, []byte(`{"a":1}`), metrics, false)
		require.NoError(t, err)
		require.NoError(t, store.SetClassifierModelArchived(ctx, 1, true))

		_, err = store.GetActiveClassifierModel(ctx)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestSetClassifierModelArchivedNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.SetClassifierModelArchived(context.Background(), 99, true)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
