package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoredCategoriesSort(t *testing.T) {
	scores := ScoredCategories{
		{CategoryID: 3, Score: 0.5},
		{CategoryID: 1, Score: 0.8},
		{CategoryID: 2, Score: 0.8},
	}
	scores.Sort()

	// Descending score; equal scores break ties by lower category ID
	assert.Equal(t, 1, scores[0].CategoryID)
	assert.Equal(t, 2, scores[1].CategoryID)
	assert.Equal(t, 3, scores[2].CategoryID)
}

func TestScoredCategoriesTop(t *testing.T) {
	assert.Nil(t, ScoredCategories{}.Top())

	scores := ScoredCategories{
		{CategoryID: 2, Score: 0.3},
		{CategoryID: 1, Score: 0.9},
	}
	top := scores.Top()
	assert.Equal(t, 1, top.CategoryID)
}

func TestScoredCategoryValidate(t *testing.T) {
	valid := ScoredCategory{Score: 0.5}
	assert.NoError(t, valid.Validate())

	tooHigh := ScoredCategory{Score: 1.2}
	assert.Error(t, tooHigh.Validate())

	negative := ScoredCategory{Score: -0.1}
	assert.Error(t, negative.Validate())
}
