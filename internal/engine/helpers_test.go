package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mdejong/budgeteer/internal/classifier"
	"github.com/mdejong/budgeteer/internal/model"
	"github.com/mdejong/budgeteer/internal/scoring"
	"github.com/mdejong/budgeteer/internal/storage"
)

func createTestStorage(t *testing.T) (*storage.SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}
	return store, func() { _ = store.Close() }
}

func newTestOrchestrator(store *storage.SQLiteStorage, cfg Config) *Orchestrator {
	return NewOrchestrator(store, scoring.NewEngine(store), classifier.NewPredictor(store), cfg)
}

func seedCategory(t *testing.T, store *storage.SQLiteStorage, name string) *model.Category {
	t.Helper()
	cat, err := store.CreateCategory(context.Background(), name, model.CategoryTypeExpense)
	require.NoError(t, err)
	return cat
}

func seedTransaction(t *testing.T, store *storage.SQLiteStorage, id, description string, amount float64) *model.Transaction {
	t.Helper()
	ctx := context.Background()

	txn := model.Transaction{
		ID:          id,
		Date:        time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Description: description,
		Amount:      amount,
		AccountID:   "checking",
	}
	txn.Hash = txn.GenerateHash()
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{txn}))

	stored, err := store.GetTransactionByID(ctx, id)
	require.NoError(t, err)
	return stored
}

func seedRule(t *testing.T, store *storage.SQLiteStorage, pattern string, categoryID int) *model.Rule {
	t.Helper()
	rule := &model.Rule{
		MatchType:  model.MatchSubstring,
		Pattern:    pattern,
		CategoryID: categoryID,
		IsActive:   true,
	}
	require.NoError(t, store.CreateRule(context.Background(), rule))
	return rule
}
