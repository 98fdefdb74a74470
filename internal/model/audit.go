package model

import (
	"encoding/json"
	"time"
)

// AuditAction identifies the kind of mutation an audit entry records.
type AuditAction string

// Audit action constants.
const (
	ActionAssign    AuditAction = "ASSIGN"
	ActionSplit     AuditAction = "SPLIT"
	ActionUndo      AuditAction = "UNDO"
	ActionAutoApply AuditAction = "AUTO_APPLY"
)

// AuditEntry is one row of the append-only audit log. The log is the single
// source of truth for undo eligibility and monitoring statistics; entries
// are never mutated or deleted, only archived for retention pruning.
//
// Before and After are opaque JSON snapshots kept for human review of undo
// decisions, not for programmatic replay.
type AuditEntry struct {
	CreatedAt     time.Time
	TransactionID string
	Actor         string
	Reason        string
	Before        json.RawMessage
	After         json.RawMessage
	Confidence    *float64
	ModelVersion  *int
	Action        AuditAction
	ID            int64
	AutoApplied   bool
	Archived      bool
}
