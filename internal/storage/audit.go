package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/model"
)

// AppendAuditEntry appends one entry to the audit log. Entries are never
// updated or deleted afterwards.
func (s *SQLiteStorage) AppendAuditEntry(ctx context.Context, entry *model.AuditEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAuditEntry(entry); err != nil {
		return err
	}
	return appendAuditEntry(ctx, s.db, entry)
}

func appendAuditEntry(ctx context.Context, q querier, entry *model.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO audit_entries
			(transaction_id, action, actor, before_state, after_state, reason,
			auto_applied, confidence, model_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.TransactionID, entry.Action, entry.Actor,
		rawJSONToNullString(entry.Before), rawJSONToNullString(entry.After),
		entry.Reason, entry.AutoApplied, entry.Confidence, entry.ModelVersion,
		entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get audit entry ID: %w", err)
	}
	entry.ID = id
	return nil
}

const auditColumns = `id, transaction_id, action, actor, before_state, after_state,
	reason, auto_applied, confidence, model_version, archived, created_at`

// LatestAutoApplyEntry returns the most recent auto-apply entry for a
// transaction, or a NotFound error when the transaction was never
// auto-applied.
func (s *SQLiteStorage) LatestAutoApplyEntry(ctx context.Context, transactionID string) (*model.AuditEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return nil, err
	}

	entry, err := scanAuditEntry(s.db.QueryRowContext(ctx, `
		SELECT `+auditColumns+`
		FROM audit_entries
		WHERE transaction_id = ? AND action = ? AND archived = 0
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, transactionID, model.ActionAutoApply).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFoundError("no auto-apply entry for transaction %s", transactionID)
		}
		return nil, err
	}
	return entry, nil
}

// AuditEntriesByTransaction returns a transaction's audit history in
// descending timestamp order. Undo and conflict checks rely on this
// ordering; callers must not assume insertion order.
func (s *SQLiteStorage) AuditEntriesByTransaction(ctx context.Context, transactionID string) ([]model.AuditEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return nil, err
	}

	return s.queryAuditEntries(ctx, `
		SELECT `+auditColumns+`
		FROM audit_entries
		WHERE transaction_id = ? AND archived = 0
		ORDER BY created_at DESC, id DESC
	`, transactionID)
}

// AuditEntriesInWindow returns all entries with a timestamp within the last
// windowDays days, newest first.
func (s *SQLiteStorage) AuditEntriesInWindow(ctx context.Context, windowDays int) ([]model.AuditEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		return nil, common.ValidationError("window must be positive, got %d days", windowDays)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)
	return s.queryAuditEntries(ctx, `
		SELECT `+auditColumns+`
		FROM audit_entries
		WHERE created_at >= ? AND archived = 0
		ORDER BY created_at DESC, id DESC
	`, cutoff)
}

func (s *SQLiteStorage) queryAuditEntries(ctx context.Context, query string, args ...any) ([]model.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.AuditEntry
	for rows.Next() {
		entry, err := scanAuditEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func scanAuditEntry(scan func(...any) error) (*model.AuditEntry, error) {
	var entry model.AuditEntry
	var before, after, reason sql.NullString
	if err := scan(
		&entry.ID, &entry.TransactionID, &entry.Action, &entry.Actor,
		&before, &after, &reason, &entry.AutoApplied,
		&entry.Confidence, &entry.ModelVersion, &entry.Archived, &entry.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan audit entry: %w", err)
	}
	if before.Valid {
		entry.Before = json.RawMessage(before.String)
	}
	if after.Valid {
		entry.After = json.RawMessage(after.String)
	}
	entry.Reason = reason.String
	return &entry, nil
}

func rawJSONToNullString(raw json.RawMessage) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
