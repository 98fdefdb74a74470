package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdejong/budgeteer/internal/model"
)

func TestLabeledExamplesSupersede(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first := &model.LabeledExample{TransactionID: "txn-1", CategoryID: 2, Accepted: true}
	require.NoError(t, store.SaveLabeledExample(ctx, first))

	// The user changed their mind: later example supersedes the first
	second := &model.LabeledExample{TransactionID: "txn-1", CategoryID: 5, Accepted: false}
	require.NoError(t, store.SaveLabeledExample(ctx, second))

	other := &model.LabeledExample{TransactionID: "txn-2", CategoryID: 2, Accepted: true}
	require.NoError(t, store.SaveLabeledExample(ctx, other))

	examples, err := store.GetLabeledExamplesSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, examples, 2)

	byTxn := make(map[string]model.LabeledExample)
	for _, ex := range examples {
		byTxn[ex.TransactionID] = ex
	}
	assert.Equal(t, 5, byTxn["txn-1"].CategoryID)
	assert.False(t, byTxn["txn-1"].Accepted)
	assert.Equal(t, 2, byTxn["txn-2"].CategoryID)
}

func TestGetLabeledExamplesSinceWindow(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	example := &model.LabeledExample{TransactionID: "txn-1", CategoryID: 2}
	require.NoError(t, store.SaveLabeledExample(ctx, example))

	// A cutoff in the future excludes the fresh example
	examples, err := store.GetLabeledExamplesSince(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, examples)
}

func TestSaveLabeledExampleProvenance(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	confidence := 0.91
	version := 4
	example := &model.LabeledExample{
		TransactionID: "txn-1",
		CategoryID:    2,
		AutoApplied:   true,
		Accepted:      true,
		Confidence:    &confidence,
		ModelVersion:  &version,
	}
	require.NoError(t, store.SaveLabeledExample(ctx, example))
	assert.NotZero(t, example.ID)

	examples, err := store.GetLabeledExamplesSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, examples, 1)
	require.NotNil(t, examples[0].Confidence)
	assert.Equal(t, 0.91, *examples[0].Confidence)
	require.NotNil(t, examples[0].ModelVersion)
	assert.Equal(t, 4, *examples[0].ModelVersion)
	assert.True(t, examples[0].AutoApplied)
}
