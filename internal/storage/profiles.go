package storage

import (
	"context"
	"fmt"

	"github.com/mdejong/budgeteer/internal/model"
)

// Profile counter kinds as stored in profile_counts.
const (
	profileKindWord         = "word"
	profileKindCounterparty = "counterparty"
	profileKindBucket       = "bucket"
)

// GetLearningProfile retrieves the frequency profile for one category. A
// category with no recorded examples yields an empty profile, not an error.
func (s *SQLiteStorage) GetLearningProfile(ctx context.Context, categoryID int) (*model.LearningProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	profile := model.NewLearningProfile(categoryID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, key, count FROM profile_counts WHERE category_id = ?`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get learning profile: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var kind, key string
		var count int
		if err := rows.Scan(&kind, &key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan profile count: %w", err)
		}
		switch kind {
		case profileKindWord:
			profile.WordCounts[key] = count
		case profileKindCounterparty:
			profile.CounterpartyCounts[key] = count
		case profileKindBucket:
			profile.BucketCounts[key] = count
		}
	}
	return profile, rows.Err()
}

// GetAllLearningProfiles retrieves profiles for every category that has one.
func (s *SQLiteStorage) GetAllLearningProfiles(ctx context.Context) ([]model.LearningProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT category_id, kind, key, count FROM profile_counts ORDER BY category_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get learning profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	byCategory := make(map[int]*model.LearningProfile)
	var order []int
	for rows.Next() {
		var categoryID, count int
		var kind, key string
		if err := rows.Scan(&categoryID, &kind, &key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan profile count: %w", err)
		}
		profile, ok := byCategory[categoryID]
		if !ok {
			profile = model.NewLearningProfile(categoryID)
			byCategory[categoryID] = profile
			order = append(order, categoryID)
		}
		switch kind {
		case profileKindWord:
			profile.WordCounts[key] = count
		case profileKindCounterparty:
			profile.CounterpartyCounts[key] = count
		case profileKindBucket:
			profile.BucketCounts[key] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile counts: %w", err)
	}

	profiles := make([]model.LearningProfile, 0, len(order))
	for _, id := range order {
		profiles = append(profiles, *byCategory[id])
	}
	return profiles, nil
}

// SaveLearningProfile upserts a profile's counters. Counters are monotonic:
// stored values are replaced with the maximum of the stored and incoming
// count, so a stale in-memory profile can never shrink the persisted one.
func (s *SQLiteStorage) SaveLearningProfile(ctx context.Context, profile *model.LearningProfile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLearningProfile(profile); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveLearningProfile(ctx, tx, profile); err != nil {
		return err
	}

	return tx.Commit()
}

func saveLearningProfile(ctx context.Context, q querier, profile *model.LearningProfile) error {
	upsert := `
		INSERT INTO profile_counts (category_id, kind, key, count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (category_id, kind, key)
		DO UPDATE SET count = MAX(count, excluded.count)
	`

	write := func(kind string, counts map[string]int) error {
		for key, count := range counts {
			if _, err := q.ExecContext(ctx, upsert, profile.CategoryID, kind, key, count); err != nil {
				return fmt.Errorf("failed to save profile %s count: %w", kind, err)
			}
		}
		return nil
	}

	if err := write(profileKindWord, profile.WordCounts); err != nil {
		return err
	}
	if err := write(profileKindCounterparty, profile.CounterpartyCounts); err != nil {
		return err
	}
	if err := write(profileKindBucket, profile.BucketCounts); err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx, `
		INSERT INTO profile_meta (category_id, updated_at)
		VALUES (?, CURRENT_TIMESTAMP)
		ON CONFLICT (category_id) DO UPDATE SET updated_at = CURRENT_TIMESTAMP
	`, profile.CategoryID); err != nil {
		return fmt.Errorf("failed to touch profile meta: %w", err)
	}

	return nil
}
