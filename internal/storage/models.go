package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/model"
)

// CreateClassifierModel persists a trained model at version
// max(existing)+1. The version is assigned inside the INSERT statement
// itself; combined with SQLite's writer serialization this makes duplicate
// versions impossible even with concurrent trainers.
func (s *SQLiteStorage) CreateClassifierModel(ctx context.Context, payload []byte, metrics model.ModelMetrics, archived bool) (*model.ClassifierModel, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: payload", ErrNilParameter)
	}

	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO classifier_models (version, payload, metrics, archived)
		SELECT COALESCE(MAX(version), 0) + 1, ?, ?, ?
		FROM classifier_models
	`, payload, string(metricsJSON), archived)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier model: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get model ID: %w", err)
	}

	return s.getClassifierModel(ctx, `WHERE id = ?`, id)
}

// GetActiveClassifierModel returns the active model: the highest-version
// row that is not archived. Activity is derived, never stored, so there is
// a single source of truth.
func (s *SQLiteStorage) GetActiveClassifierModel(ctx context.Context) (*model.ClassifierModel, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getClassifierModel(ctx, `WHERE archived = 0 ORDER BY version DESC LIMIT 1`)
}

// GetClassifierModelByVersion retrieves a specific model version.
func (s *SQLiteStorage) GetClassifierModelByVersion(ctx context.Context, version int) (*model.ClassifierModel, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getClassifierModel(ctx, `WHERE version = ?`, version)
}

func (s *SQLiteStorage) getClassifierModel(ctx context.Context, where string, args ...any) (*model.ClassifierModel, error) {
	var m model.ClassifierModel
	var metricsJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, version, payload, metrics, archived, trained_at
		FROM classifier_models `+where,
		args...,
	).Scan(&m.ID, &m.Version, &m.Payload, &metricsJSON, &m.Archived, &m.TrainedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFoundError("classifier model")
		}
		return nil, fmt.Errorf("failed to get classifier model: %w", err)
	}

	if err := json.Unmarshal([]byte(metricsJSON), &m.Metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model metrics: %w", err)
	}
	return &m, nil
}

// SetClassifierModelArchived archives or unarchives a model version.
// Archiving the highest version shifts activity to the next non-archived
// row; unarchiving an older version only activates it if no newer
// non-archived version exists.
func (s *SQLiteStorage) SetClassifierModelArchived(ctx context.Context, version int, archived bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE classifier_models SET archived = ? WHERE version = ?`,
		archived, version)
	if err != nil {
		return fmt.Errorf("failed to update classifier model: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return common.NotFoundError("classifier model version %d", version)
	}
	return nil
}
