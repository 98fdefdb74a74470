package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mdejong/budgeteer/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidRule        = errors.New("invalid rule")
	ErrInvalidAuditEntry  = errors.New("invalid audit entry")
	ErrInvalidExample     = errors.New("invalid labeled example")
	ErrInvalidProfile     = errors.New("invalid learning profile")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Description == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTransaction)
	}
	if txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	return nil
}

// validateRule validates a category rule.
func validateRule(rule *model.Rule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	switch rule.MatchType {
	case model.MatchSubstring, model.MatchCounterparty, model.MatchRegex:
	default:
		return fmt.Errorf("%w: unknown match type %q", ErrInvalidRule, rule.MatchType)
	}
	if rule.Pattern == "" {
		return fmt.Errorf("%w: missing pattern", ErrInvalidRule)
	}
	if rule.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidRule)
	}
	return nil
}

// validateAuditEntry validates an audit entry before appending.
func validateAuditEntry(entry *model.AuditEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if entry.TransactionID == "" {
		return fmt.Errorf("%w: missing transaction ID", ErrInvalidAuditEntry)
	}
	switch entry.Action {
	case model.ActionAssign, model.ActionSplit, model.ActionUndo, model.ActionAutoApply:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidAuditEntry, entry.Action)
	}
	if entry.Actor == "" {
		return fmt.Errorf("%w: missing actor", ErrInvalidAuditEntry)
	}
	return nil
}

// validateLabeledExample validates a labeled example.
func validateLabeledExample(example *model.LabeledExample) error {
	if example == nil {
		return fmt.Errorf("%w: example", ErrNilParameter)
	}
	if example.TransactionID == "" {
		return fmt.Errorf("%w: missing transaction ID", ErrInvalidExample)
	}
	if example.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidExample)
	}
	return nil
}

// validateLearningProfile validates a learning profile.
func validateLearningProfile(profile *model.LearningProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilParameter)
	}
	if profile.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidProfile)
	}
	return nil
}
