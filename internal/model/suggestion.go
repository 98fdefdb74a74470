package model

import (
	"fmt"
	"sort"
)

// SuggestionSource records which stage produced a category suggestion.
type SuggestionSource string

// Suggestion source constants.
const (
	SourceRule    SuggestionSource = "rule"
	SourceModel   SuggestionSource = "model"
	SourceProfile SuggestionSource = "profile"
)

// Suggestion is a proposed category assignment for a transaction.
type Suggestion struct {
	CategoryName string
	TopFeatures  []string // Illustrative feature explanation, not rigorous
	ModelVersion *int
	Source       SuggestionSource
	CategoryID   int
	Confidence   float64
}

// ScoredCategory is one category's similarity score against a transaction,
// with the per-signal breakdown.
type ScoredCategory struct {
	CategoryName      string
	CategoryID        int
	Score             float64
	WordScore         float64
	CounterpartyScore float64
	BucketScore       float64
}

// Validate ensures the score is within bounds.
func (s *ScoredCategory) Validate() error {
	if s.Score < 0.0 || s.Score > 1.0 {
		return fmt.Errorf("score must be between 0.0 and 1.0, got %.4f", s.Score)
	}
	return nil
}

// ScoredCategories is a sortable list of category scores.
type ScoredCategories []ScoredCategory

// Len implements sort.Interface.
func (s ScoredCategories) Len() int { return len(s) }

// Less implements sort.Interface: higher scores first, ties broken by
// category ID ascending for determinism.
func (s ScoredCategories) Less(i, j int) bool {
	if s[i].Score != s[j].Score {
		return s[i].Score > s[j].Score
	}
	return s[i].CategoryID < s[j].CategoryID
}

// Swap implements sort.Interface.
func (s ScoredCategories) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// Sort orders the list by descending score.
func (s ScoredCategories) Sort() { sort.Sort(s) }

// Top returns the highest-scoring category, or nil if empty.
func (s ScoredCategories) Top() *ScoredCategory {
	if len(s) == 0 {
		return nil
	}
	s.Sort()
	return &s[0]
}
