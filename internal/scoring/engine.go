// Package scoring computes statistical category suggestions from learned
// per-category frequency profiles.
package scoring

import (
	"context"
	"fmt"

	"github.com/mdejong/budgeteer/internal/model"
)

// Weights holds the fixed linear-combination weights for the three
// sub-scores. They must sum to at most 1 so the total stays within [0,1].
type Weights struct {
	Word         float64
	Counterparty float64
	Bucket       float64
}

// DefaultWeights weighs description overlap heaviest: wording is the
// strongest signal for most bank transactions.
func DefaultWeights() Weights {
	return Weights{Word: 0.5, Counterparty: 0.3, Bucket: 0.2}
}

// ProfileSource provides the data the engine scores against.
type ProfileSource interface {
	GetAllLearningProfiles(ctx context.Context) ([]model.LearningProfile, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
}

// Engine ranks categories for a transaction by similarity to their learned
// profiles.
type Engine struct {
	source  ProfileSource
	weights Weights
}

// NewEngine creates a scoring engine with default weights.
func NewEngine(source ProfileSource) *Engine {
	return &Engine{source: source, weights: DefaultWeights()}
}

// Score computes a ranked list of category scores for a transaction.
// Categories without a profile are skipped. The result is sorted by score
// descending, ties broken by category ID ascending.
func (e *Engine) Score(ctx context.Context, txn model.Transaction) (model.ScoredCategories, error) {
	profiles, err := e.source.GetAllLearningProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load learning profiles: %w", err)
	}

	categories, err := e.source.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	names := make(map[int]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}

	tokens := Tokenize(txn.Description)
	bucket := model.AmountBucket(txn.Amount)

	scores := make(model.ScoredCategories, 0, len(profiles))
	for i := range profiles {
		profile := &profiles[i]
		sc := ScoreProfile(profile, tokens, txn.Counterparty, bucket, e.weights)
		sc.CategoryName = names[profile.CategoryID]
		scores = append(scores, sc)
	}

	scores.Sort()
	return scores, nil
}

// BestSuggestion returns the top-ranked category as a suggestion when its
// score is at or above the threshold, or nil when no category qualifies.
// The threshold is a strict lower bound supplied by the caller, not a
// learned cutoff: a score exactly equal to it qualifies.
func (e *Engine) BestSuggestion(ctx context.Context, txn model.Transaction, threshold float64) (*model.Suggestion, error) {
	scores, err := e.Score(ctx, txn)
	if err != nil {
		return nil, err
	}

	top := scores.Top()
	if top == nil || top.Score < threshold {
		return nil, nil
	}

	return &model.Suggestion{
		CategoryID:   top.CategoryID,
		CategoryName: top.CategoryName,
		Confidence:   top.Score,
		Source:       model.SourceProfile,
	}, nil
}

// ScoreProfile computes the weighted similarity between one transaction and
// one category profile. All three sub-scores and the total are in [0,1].
func ScoreProfile(profile *model.LearningProfile, tokens []string, counterparty, bucket string, weights Weights) model.ScoredCategory {
	sc := model.ScoredCategory{CategoryID: profile.CategoryID}

	// Word overlap normalized by the profile's total word mass.
	if mass := profile.TotalWordMass(); mass > 0 {
		var matched int
		for _, tok := range tokens {
			matched += profile.WordCounts[tok]
		}
		sc.WordScore = clamp01(float64(matched) / float64(mass))
	}

	// Counterparty weight within the profile.
	if mass := profile.TotalCounterpartyMass(); mass > 0 && counterparty != "" {
		sc.CounterpartyScore = clamp01(float64(profile.CounterpartyCounts[counterparty]) / float64(mass))
	}

	// Amount-bucket weight within the profile.
	if mass := profile.TotalBucketMass(); mass > 0 {
		sc.BucketScore = clamp01(float64(profile.BucketCounts[bucket]) / float64(mass))
	}

	sc.Score = clamp01(weights.Word*sc.WordScore +
		weights.Counterparty*sc.CounterpartyScore +
		weights.Bucket*sc.BucketScore)

	return sc
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
