package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdejong/budgeteer/internal/model"
)

func TestExtract(t *testing.T) {
	txn := &model.Transaction{
		Date:         time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), // A Saturday
		Description:  "ALBERT HEIJN 1403",
		Counterparty: "NL01BANK0123456789",
		Amount:       -23.45,
	}

	x := Extract(txn)
	require.Len(t, x, featureDim)

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, x, Extract(txn))
	})

	t.Run("numeric tail", func(t *testing.T) {
		assert.Equal(t, -23.45, x[idxAmount])
		assert.Equal(t, 23.45, x[idxAbsAmount])
		assert.Equal(t, float64(time.Saturday), x[idxDayOfWeek])
		assert.Equal(t, 6.0, x[idxMonth])
		assert.Equal(t, 2.0, x[idxQuarter])
		assert.Equal(t, 0.0, x[idxIncome])
		assert.Equal(t, 1.0, x[idxWeekend])
	})

	t.Run("amount bucket is one-hot", func(t *testing.T) {
		var hot int
		for i := 0; i < bucketSlots; i++ {
			if x[idxBucketBase+i] == 1 {
				hot++
			}
		}
		assert.Equal(t, 1, hot)
		assert.Equal(t, 1.0, x[idxBucketBase+bucketIndex["10-25"]])
	})

	t.Run("income flag", func(t *testing.T) {
		income := *txn
		income.Amount = 2500.00
		y := Extract(&income)
		assert.Equal(t, 1.0, y[idxIncome])
	})

	t.Run("different descriptions differ", func(t *testing.T) {
		other := *txn
		other.Description = "SHELL STATION ROTTERDAM"
		assert.NotEqual(t, x, Extract(&other))
	})
}
