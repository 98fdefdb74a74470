// Package service defines the persistence contracts used by the engines.
package service

import (
	"context"
	"time"

	"github.com/mdejong/budgeteer/internal/model"
)

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionsByAccount(ctx context.Context, accountID string) ([]model.Transaction, error)
	GetUnassignedTransactions(ctx context.Context) ([]model.Transaction, error)
	// UpdateSplits replaces the transaction's splits and bumps its version.
	// It fails with a Conflict error when expectedVersion is stale.
	UpdateSplits(ctx context.Context, id string, splits []model.Split, expectedVersion int) error

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error)

	// Rule operations
	GetActiveRules(ctx context.Context) ([]model.Rule, error)
	CreateRule(ctx context.Context, rule *model.Rule) error
	SetRuleActive(ctx context.Context, id int, active bool) error

	// Learning profile operations
	GetLearningProfile(ctx context.Context, categoryID int) (*model.LearningProfile, error)
	GetAllLearningProfiles(ctx context.Context) ([]model.LearningProfile, error)
	SaveLearningProfile(ctx context.Context, profile *model.LearningProfile) error

	// Labeled example operations
	SaveLabeledExample(ctx context.Context, example *model.LabeledExample) error
	GetLabeledExamplesSince(ctx context.Context, since time.Time) ([]model.LabeledExample, error)

	// Classifier model operations. CreateClassifierModel assigns
	// version = max(existing)+1 inside a single statement so concurrent
	// trainers can never mint duplicate versions.
	CreateClassifierModel(ctx context.Context, payload []byte, metrics model.ModelMetrics, archived bool) (*model.ClassifierModel, error)
	// GetActiveClassifierModel returns the highest-version non-archived
	// model, or a NotFound error when none exists.
	GetActiveClassifierModel(ctx context.Context) (*model.ClassifierModel, error)
	GetClassifierModelByVersion(ctx context.Context, version int) (*model.ClassifierModel, error)
	SetClassifierModelArchived(ctx context.Context, version int, archived bool) error

	// Audit log operations. The log is append-only; queries return entries
	// in descending timestamp order.
	AppendAuditEntry(ctx context.Context, entry *model.AuditEntry) error
	LatestAutoApplyEntry(ctx context.Context, transactionID string) (*model.AuditEntry, error)
	AuditEntriesByTransaction(ctx context.Context, transactionID string) ([]model.AuditEntry, error)
	AuditEntriesInWindow(ctx context.Context, windowDays int) ([]model.AuditEntry, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx groups the mutations that must land atomically: split writes and their
// audit entries, and feedback writes with their profile updates.
type Tx interface {
	Commit() error
	Rollback() error

	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	UpdateSplits(ctx context.Context, id string, splits []model.Split, expectedVersion int) error
	AppendAuditEntry(ctx context.Context, entry *model.AuditEntry) error
	SaveLabeledExample(ctx context.Context, example *model.LabeledExample) error
	SaveLearningProfile(ctx context.Context, profile *model.LearningProfile) error
}
