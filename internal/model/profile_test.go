package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountBucket(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "0-10"},
		{9.99, "0-10"},
		{10, "10-25"}, // Upper bound is exclusive
		{24.99, "10-25"},
		{25, "25-50"},
		{50, "50-100"},
		{100, "100-250"},
		{250, "250-1000"},
		{999.99, "250-1000"},
		{1000, "1000+"},
		{15000, "1000+"},
		{-23.45, "10-25"}, // Expenses bucket by absolute value
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AmountBucket(tt.amount), "AmountBucket(%v)", tt.amount)
	}
}

func TestLearningProfileObserve(t *testing.T) {
	profile := NewLearningProfile(3)

	profile.Observe([]string{"albert", "heijn"}, "NL01BANK0123456789", -23.45)
	profile.Observe([]string{"albert"}, "", -150.00)

	assert.Equal(t, 2, profile.WordCounts["albert"])
	assert.Equal(t, 1, profile.WordCounts["heijn"])
	assert.Equal(t, 3, profile.TotalWordMass())

	// Empty counterparty is not counted
	assert.Equal(t, 1, profile.TotalCounterpartyMass())

	assert.Equal(t, 1, profile.BucketCounts["10-25"])
	assert.Equal(t, 1, profile.BucketCounts["100-250"])
	assert.Equal(t, 2, profile.TotalBucketMass())
}
