package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdejong/budgeteer/internal/model"
)

func TestGetLearningProfileEmpty(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// A category with no recorded examples is an empty profile, not an error
	profile, err := store.GetLearningProfile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, profile.CategoryID)
	assert.Zero(t, profile.TotalWordMass())
	assert.Zero(t, profile.TotalCounterpartyMass())
	assert.Zero(t, profile.TotalBucketMass())
}

func TestSaveLearningProfileRoundtrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	profile := model.NewLearningProfile(3)
	profile.Observe([]string{"albert", "heijn"}, "NL01BANK0123456789", -23.45)
	profile.Observe([]string{"albert", "heijn"}, "NL01BANK0123456789", -41.20)

	require.NoError(t, store.SaveLearningProfile(ctx, profile))

	reloaded, err := store.GetLearningProfile(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.WordCounts["albert"])
	assert.Equal(t, 2, reloaded.CounterpartyCounts["NL01BANK0123456789"])
	assert.Equal(t, 1, reloaded.BucketCounts["10-25"])
	assert.Equal(t, 1, reloaded.BucketCounts["25-50"])
}

func TestSaveLearningProfileMonotonic(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	profile := model.NewLearningProfile(3)
	profile.WordCounts["heijn"] = 5
	require.NoError(t, store.SaveLearningProfile(ctx, profile))

	// A stale in-memory profile with a lower count must not shrink the
	// persisted counter
	stale := model.NewLearningProfile(3)
	stale.WordCounts["heijn"] = 2
	require.NoError(t, store.SaveLearningProfile(ctx, stale))

	reloaded, err := store.GetLearningProfile(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.WordCounts["heijn"])
}

func TestGetAllLearningProfiles(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, categoryID := range []int{2, 5} {
		profile := model.NewLearningProfile(categoryID)
		profile.Observe([]string{"test"}, "", -5)
		require.NoError(t, store.SaveLearningProfile(ctx, profile))
	}

	profiles, err := store.GetAllLearningProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, 2, profiles[0].CategoryID)
	assert.Equal(t, 5, profiles[1].CategoryID)
}
