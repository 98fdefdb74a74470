package classifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/model"
)

func TestPredictWithoutModel(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	predictor := NewPredictor(store)
	txn := &model.Transaction{
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Description: "ALBERT HEIJN",
		Amount:      -12.00,
	}

	_, err := predictor.PredictTransaction(ctx, txn)
	assert.ErrorIs(t, err, common.ErrModelUnavailable)
}

func TestPredictMissingTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	predictor := NewPredictor(store)
	_, err := predictor.Predict(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPredictTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	groceriesID, salaryID := seedCorpus(t, store, 10)

	cfg := DefaultTrainerConfig()
	cfg.ApprovalF1 = 0
	trainer := NewTrainer(store, cfg)
	_, err := trainer.Train(ctx, 365)
	require.NoError(t, err)

	predictor := NewPredictor(store)

	t.Run("classifies an unseen grocery run", func(t *testing.T) {
		txn := &model.Transaction{
			Date:         time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC),
			Description:  "ALBERT HEIJN 2210 UTRECHT",
			Counterparty: "NL01AHOLD0123456789",
			Amount:       -17.80,
		}
		suggestion, err := predictor.PredictTransaction(ctx, txn)
		require.NoError(t, err)
		assert.Equal(t, groceriesID, suggestion.CategoryID)
		assert.Equal(t, "Groceries", suggestion.CategoryName)
		assert.Equal(t, model.SourceModel, suggestion.Source)
		require.NotNil(t, suggestion.ModelVersion)
		assert.Equal(t, 1, *suggestion.ModelVersion)
		assert.NotEmpty(t, suggestion.TopFeatures)
	})

	t.Run("classifies an unseen salary payment", func(t *testing.T) {
		txn := &model.Transaction{
			Date:         time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC),
			Description:  "EMPLOYER BV SALARY PAYMENT JULY",
			Counterparty: "NL99WERK9876543210",
			Amount:       2500.00,
		}
		suggestion, err := predictor.PredictTransaction(ctx, txn)
		require.NoError(t, err)
		assert.Equal(t, salaryID, suggestion.CategoryID)
	})

	t.Run("cache follows the active version", func(t *testing.T) {
		_, err := trainer.Train(ctx, 365)
		require.NoError(t, err)

		txn := &model.Transaction{
			Date:        time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC),
			Description: "ALBERT HEIJN 2210",
			Amount:      -17.80,
		}
		suggestion, err := predictor.PredictTransaction(ctx, txn)
		require.NoError(t, err)
		require.NotNil(t, suggestion.ModelVersion)
		assert.Equal(t, 2, *suggestion.ModelVersion)
	})
}
