// Package engine implements the safe-automation loop around category
// suggestions: the auto-apply sweep, manual assignment, feedback recording,
// undo, and audit-log monitoring.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mdejong/budgeteer/internal/classifier"
	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/match"
	"github.com/mdejong/budgeteer/internal/model"
	"github.com/mdejong/budgeteer/internal/scoring"
	"github.com/mdejong/budgeteer/internal/service"
)

// AutoActor is the actor recorded on audit entries written by the sweep.
const AutoActor = "auto-apply"

// Config holds the automation policy knobs.
type Config struct {
	// AccountAllowlist restricts the sweep to these accounts; empty means
	// every account is eligible.
	AccountAllowlist []string
	// CategoryExcludelist lists category IDs that are never auto-applied.
	CategoryExcludelist []int
	// ConfidenceThreshold is the minimum confidence for auto-apply.
	ConfidenceThreshold float64
	// SuggestionThreshold is the minimum profile score for a statistical
	// suggestion when no trained model is active.
	SuggestionThreshold float64
	// RetentionDays is the undo window after an auto-apply.
	RetentionDays int
}

// DefaultConfig returns the default automation configuration.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.8,
		SuggestionThreshold: 0.5,
		RetentionDays:       30,
	}
}

// Orchestrator decides, per transaction, whether a suggestion is safe to
// apply without user confirmation.
type Orchestrator struct {
	storage   service.Storage
	scorer    *scoring.Engine
	predictor *classifier.Predictor
	cfg       Config
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(storage service.Storage, scorer *scoring.Engine, predictor *classifier.Predictor, cfg Config) *Orchestrator {
	return &Orchestrator{
		storage:   storage,
		scorer:    scorer,
		predictor: predictor,
		cfg:       cfg,
	}
}

// Suggest returns the best category suggestion for a transaction, or nil
// when nothing qualifies. Rules short-circuit the statistical path; a rule
// match carries confidence 1.0.
func (o *Orchestrator) Suggest(ctx context.Context, transactionID string) (*model.Suggestion, error) {
	txn, err := o.storage.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	rules, err := o.storage.GetActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	return o.suggestFor(ctx, txn, match.NewMatcher(rules))
}

// suggestFor runs the pipeline stages against an already-built rule
// matcher so the sweep evaluates one snapshot for the whole pass.
func (o *Orchestrator) suggestFor(ctx context.Context, txn *model.Transaction, matcher *match.Matcher) (*model.Suggestion, error) {
	if rule := matcher.Match(*txn); rule != nil {
		category, err := o.storage.GetCategoryByID(ctx, rule.CategoryID)
		if err != nil {
			return nil, err
		}
		return &model.Suggestion{
			CategoryID:   category.ID,
			CategoryName: category.Name,
			Confidence:   1.0,
			Source:       model.SourceRule,
		}, nil
	}

	suggestion, err := o.predictor.PredictTransaction(ctx, txn)
	if err == nil {
		return suggestion, nil
	}
	if !errors.Is(err, common.ErrModelUnavailable) {
		return nil, err
	}

	// No trained model yet: fall back to profile scoring.
	return o.scorer.BestSuggestion(ctx, *txn, o.cfg.SuggestionThreshold)
}

// SweepStats summarizes one auto-apply sweep.
type SweepStats struct {
	Examined  int
	Applied   int
	Deferred  int // Below threshold or no suggestion
	Skipped   int // Ineligible account or excluded category
	Conflicts int
}

// RunSweep walks all unassigned transactions and auto-applies qualifying
// suggestions. Each application writes one full-amount split and an
// auto-apply audit entry in a single storage transaction; a concurrent
// edit rolls both back and the transaction is skipped.
func (o *Orchestrator) RunSweep(ctx context.Context) (*SweepStats, error) {
	txns, err := o.storage.GetUnassignedTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load unassigned transactions: %w", err)
	}

	rules, err := o.storage.GetActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	matcher := match.NewMatcher(rules)

	stats := &SweepStats{}
	for i := range txns {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		txn := &txns[i]
		stats.Examined++

		if !o.accountEligible(txn.AccountID) {
			stats.Skipped++
			continue
		}

		suggestion, err := o.suggestFor(ctx, txn, matcher)
		if err != nil {
			common.LogError(err, "Failed to compute suggestion", common.Fields{
				"transaction_id": txn.ID,
			})
			stats.Deferred++
			continue
		}
		if suggestion == nil || suggestion.Confidence < o.cfg.ConfidenceThreshold {
			stats.Deferred++
			continue
		}
		if slices.Contains(o.cfg.CategoryExcludelist, suggestion.CategoryID) {
			stats.Skipped++
			continue
		}

		if err := o.autoApply(ctx, txn, suggestion); err != nil {
			if errors.Is(err, common.ErrConflict) {
				slog.Warn("Skipping transaction modified concurrently",
					"transaction_id", txn.ID)
				stats.Conflicts++
				continue
			}
			return stats, err
		}
		stats.Applied++

		slog.Info("Auto-applied category",
			"transaction_id", txn.ID,
			"category", suggestion.CategoryName,
			"confidence", suggestion.Confidence,
			"source", suggestion.Source)
	}

	slog.Info("Auto-apply sweep complete",
		"examined", stats.Examined,
		"applied", stats.Applied,
		"deferred", stats.Deferred,
		"skipped", stats.Skipped,
		"conflicts", stats.Conflicts)

	return stats, nil
}

func (o *Orchestrator) accountEligible(accountID string) bool {
	if len(o.cfg.AccountAllowlist) == 0 {
		return true
	}
	return slices.Contains(o.cfg.AccountAllowlist, accountID)
}

// autoApply writes the split and the audit entry as one atomic unit.
func (o *Orchestrator) autoApply(ctx context.Context, txn *model.Transaction, suggestion *model.Suggestion) error {
	splits := []model.Split{{
		CategoryID: suggestion.CategoryID,
		Amount:     txn.AbsAmount(),
	}}

	tx, err := o.storage.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.UpdateSplits(ctx, txn.ID, splits, txn.Version); err != nil {
		return err
	}

	confidence := suggestion.Confidence
	entry := &model.AuditEntry{
		TransactionID: txn.ID,
		Action:        model.ActionAutoApply,
		Actor:         AutoActor,
		Before:        snapshotSplits(txn.Splits),
		After:         snapshotSplits(splits),
		Reason:        fmt.Sprintf("confidence %.2f from %s", confidence, suggestion.Source),
		AutoApplied:   true,
		Confidence:    &confidence,
		ModelVersion:  suggestion.ModelVersion,
	}
	if err := tx.AppendAuditEntry(ctx, entry); err != nil {
		return err
	}

	return tx.Commit()
}

// Assign writes a manual split assignment with its audit entry.
func (o *Orchestrator) Assign(ctx context.Context, transactionID string, splits []model.Split, actor, reason string) error {
	if err := validateActor(actor); err != nil {
		return err
	}

	tx, err := o.storage.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	txn, err := tx.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}

	if err := tx.UpdateSplits(ctx, transactionID, splits, txn.Version); err != nil {
		return err
	}

	action := model.ActionAssign
	if len(splits) > 1 {
		action = model.ActionSplit
	}
	entry := &model.AuditEntry{
		TransactionID: transactionID,
		Action:        action,
		Actor:         actor,
		Before:        snapshotSplits(txn.Splits),
		After:         snapshotSplits(splits),
		Reason:        reason,
	}
	if err := tx.AppendAuditEntry(ctx, entry); err != nil {
		return err
	}

	return tx.Commit()
}

// Feedback describes one user decision about a suggestion: the category
// the transaction finally landed in, plus provenance for the training
// corpus.
type Feedback struct {
	TransactionID string
	Confidence    *float64
	ModelVersion  *int
	CategoryID    int
	Accepted      bool // User kept the original suggestion
	AutoApplied   bool // The assignment had been written by the sweep
}

// RecordFeedback appends a labeled example and extends the category's
// learning profile, atomically. This is the only writer of profile
// counters.
func (o *Orchestrator) RecordFeedback(ctx context.Context, fb Feedback) error {
	if fb.CategoryID <= 0 {
		return common.ValidationError("final category is required")
	}

	if _, err := o.storage.GetCategoryByID(ctx, fb.CategoryID); err != nil {
		return err
	}

	txn, err := o.storage.GetTransactionByID(ctx, fb.TransactionID)
	if err != nil {
		return err
	}

	profile, err := o.storage.GetLearningProfile(ctx, fb.CategoryID)
	if err != nil {
		return err
	}
	profile.Observe(scoring.Tokenize(txn.Description), txn.Counterparty, txn.Amount)

	example := &model.LabeledExample{
		TransactionID: fb.TransactionID,
		CategoryID:    fb.CategoryID,
		Accepted:      fb.Accepted,
		AutoApplied:   fb.AutoApplied,
		Confidence:    fb.Confidence,
		ModelVersion:  fb.ModelVersion,
	}

	tx, err := o.storage.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.SaveLabeledExample(ctx, example); err != nil {
		return err
	}
	if err := tx.SaveLearningProfile(ctx, profile); err != nil {
		return err
	}

	return tx.Commit()
}

func validateActor(actor string) error {
	if actor == "" {
		return common.ValidationError("actor is required")
	}
	return nil
}

// snapshotSplits serializes splits as an opaque JSON audit snapshot. The
// snapshot exists for human undo review, not programmatic replay.
func snapshotSplits(splits []model.Split) json.RawMessage {
	payload := struct {
		Splits []model.Split `json:"splits"`
	}{Splits: splits}

	raw, err := json.Marshal(payload)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}
