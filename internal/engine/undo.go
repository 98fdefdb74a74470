package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/model"
	"github.com/mdejong/budgeteer/internal/service"
)

// undoReasonPrefix ties an Undo entry back to the auto-apply it reverses;
// the monitor counts undo entries by this prefix.
const undoReasonPrefix = "undo of auto-apply"

// UndoCoordinator reverses auto-applied assignments within the retention
// window, refusing when a manual edit has happened since.
type UndoCoordinator struct {
	storage       service.Storage
	retentionDays int
}

// NewUndoCoordinator creates an undo coordinator.
func NewUndoCoordinator(storage service.Storage, retentionDays int) *UndoCoordinator {
	return &UndoCoordinator{storage: storage, retentionDays: retentionDays}
}

// Undo reverts the most recent auto-applied assignment of a transaction.
//
// Fails with NotFound when the transaction was never auto-applied, was
// already undone, or the retention window has elapsed; fails with Conflict
// when a manual edit postdates the auto-apply. The two failure messages
// differ deliberately: an expired window is simply too late, while a
// conflict calls for manual review.
//
// Undo clears the transaction's splits and leaves it unassigned; it does
// not attempt to restore whatever splits existed before the auto-apply.
// The before snapshot on the audit entry preserves that state for review.
func (u *UndoCoordinator) Undo(ctx context.Context, transactionID, actor string) error {
	if err := validateActor(actor); err != nil {
		return err
	}

	entry, err := u.undoTarget(ctx, transactionID)
	if err != nil {
		return err
	}

	tx, err := u.storage.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	txn, err := tx.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}

	if err := tx.UpdateSplits(ctx, transactionID, nil, txn.Version); err != nil {
		return err
	}

	undoEntry := &model.AuditEntry{
		TransactionID: transactionID,
		Action:        model.ActionUndo,
		Actor:         actor,
		Before:        snapshotSplits(txn.Splits),
		After:         snapshotSplits(nil),
		Reason:        fmt.Sprintf("%s %d", undoReasonPrefix, entry.ID),
	}
	if err := tx.AppendAuditEntry(ctx, undoEntry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("Undid auto-applied assignment",
		"transaction_id", transactionID,
		"auto_apply_entry", entry.ID,
		"actor", actor)

	return nil
}

// CanUndo reports whether an undo would currently succeed.
func (u *UndoCoordinator) CanUndo(ctx context.Context, transactionID string) (bool, error) {
	_, err := u.undoTarget(ctx, transactionID)
	if err != nil {
		if common.IsExpected(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// undoTarget locates the auto-apply entry an undo would revert and checks
// eligibility against the audit history.
func (u *UndoCoordinator) undoTarget(ctx context.Context, transactionID string) (*model.AuditEntry, error) {
	entry, err := u.storage.LatestAutoApplyEntry(ctx, transactionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundError(
				"transaction %s has no auto-applied assignment to undo", transactionID)
		}
		return nil, err
	}

	age := time.Since(entry.CreatedAt)
	if age > time.Duration(u.retentionDays)*24*time.Hour {
		return nil, common.NotFoundError(
			"retention window expired: auto-apply was %d days ago, undo is allowed for %d days",
			int(age.Hours()/24), u.retentionDays)
	}

	history, err := u.storage.AuditEntriesByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	// History is newest-first; only entries strictly after the auto-apply
	// matter. An Undo means this auto-apply is already reverted; any other
	// manual entry means the user has edited since and their intent wins.
	for i := range history {
		h := &history[i]
		if !h.CreatedAt.After(entry.CreatedAt) {
			break
		}
		if h.AutoApplied {
			continue
		}
		if h.Action == model.ActionUndo && strings.HasPrefix(h.Reason, undoReasonPrefix) {
			return nil, common.NotFoundError(
				"transaction %s was already undone", transactionID)
		}
		return nil, common.ConflictError(
			"transaction %s was manually edited after the auto-apply (entry %d by %s); review it instead of undoing",
			transactionID, h.ID, h.Actor)
	}

	return entry, nil
}
