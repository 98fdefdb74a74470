package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/mdejong/budgeteer/internal/model"
)

// SaveLabeledExample appends one labeled example. The corpus is append-only:
// a later example for the same transaction supersedes earlier rows by
// created_at without deleting them.
func (s *SQLiteStorage) SaveLabeledExample(ctx context.Context, example *model.LabeledExample) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLabeledExample(example); err != nil {
		return err
	}
	return saveLabeledExample(ctx, s.db, example)
}

func saveLabeledExample(ctx context.Context, q querier, example *model.LabeledExample) error {
	res, err := q.ExecContext(ctx, `
		INSERT INTO labeled_examples (transaction_id, category_id, auto_applied, accepted, confidence, model_version)
		VALUES (?, ?, ?, ?, ?, ?)
	`, example.TransactionID, example.CategoryID, example.AutoApplied,
		example.Accepted, example.Confidence, example.ModelVersion)
	if err != nil {
		return fmt.Errorf("failed to save labeled example: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get example ID: %w", err)
	}
	example.ID = id
	example.CreatedAt = time.Now()
	return nil
}

// GetLabeledExamplesSince retrieves the training corpus created at or after
// the given time. For each transaction only the most recent example counts;
// superseded rows are filtered out here so trainers never see stale labels.
func (s *SQLiteStorage) GetLabeledExamplesSince(ctx context.Context, since time.Time) ([]model.LabeledExample, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.transaction_id, e.category_id, e.auto_applied, e.accepted,
			e.confidence, e.model_version, e.created_at
		FROM labeled_examples e
		WHERE e.created_at >= ?
		AND e.id = (
			SELECT MAX(id) FROM labeled_examples
			WHERE transaction_id = e.transaction_id
		)
		ORDER BY e.id
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get labeled examples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var examples []model.LabeledExample
	for rows.Next() {
		var ex model.LabeledExample
		if err := rows.Scan(
			&ex.ID, &ex.TransactionID, &ex.CategoryID, &ex.AutoApplied,
			&ex.Accepted, &ex.Confidence, &ex.ModelVersion, &ex.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan labeled example: %w", err)
		}
		examples = append(examples, ex)
	}
	return examples, rows.Err()
}
