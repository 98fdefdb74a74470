package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/model"
)

// SaveTransactions persists imported transactions, skipping duplicates by hash.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (id, hash, date, description, counterparty, amount, account_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range transactions {
		txn := &transactions[i]
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}
		if _, err := stmt.ExecContext(ctx,
			txn.ID, txn.Hash, txn.Date, txn.Description,
			txn.Counterparty, txn.Amount, txn.AccountID,
		); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// GetTransactionByID retrieves a transaction with its splits.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getTransactionByID(ctx, s.db, id)
}

func getTransactionByID(ctx context.Context, q querier, id string) (*model.Transaction, error) {
	var txn model.Transaction
	var counterparty sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT id, hash, date, description, counterparty, amount, account_id, version, archived
		FROM transactions
		WHERE id = ?
	`, id).Scan(
		&txn.ID, &txn.Hash, &txn.Date, &txn.Description,
		&counterparty, &txn.Amount, &txn.AccountID, &txn.Version, &txn.Archived,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFoundError("transaction %s", id)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	txn.Counterparty = counterparty.String

	splits, err := getSplits(ctx, q, id)
	if err != nil {
		return nil, err
	}
	txn.Splits = splits

	return &txn, nil
}

func getSplits(ctx context.Context, q querier, transactionID string) ([]model.Split, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, category_id, amount, COALESCE(note, '')
		FROM splits
		WHERE transaction_id = ?
		ORDER BY id
	`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var splits []model.Split
	for rows.Next() {
		var s model.Split
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Amount, &s.Note); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, s)
	}
	return splits, rows.Err()
}

// GetTransactionsByAccount retrieves all transactions for an account,
// most recent first.
func (s *SQLiteStorage) GetTransactionsByAccount(ctx context.Context, accountID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}
	return s.queryTransactions(ctx, `
		SELECT id, hash, date, description, counterparty, amount, account_id, version, archived
		FROM transactions
		WHERE account_id = ? AND archived = 0
		ORDER BY date DESC
	`, accountID)
}

// GetUnassignedTransactions retrieves non-archived transactions that have no
// splits yet, oldest first so sweeps work through the backlog in order.
func (s *SQLiteStorage) GetUnassignedTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryTransactions(ctx, `
		SELECT t.id, t.hash, t.date, t.description, t.counterparty, t.amount, t.account_id, t.version, t.archived
		FROM transactions t
		LEFT JOIN splits sp ON sp.transaction_id = t.id
		WHERE sp.id IS NULL AND t.archived = 0
		ORDER BY t.date ASC
	`)
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var counterparty sql.NullString
		if err := rows.Scan(
			&txn.ID, &txn.Hash, &txn.Date, &txn.Description,
			&counterparty, &txn.Amount, &txn.AccountID, &txn.Version, &txn.Archived,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Counterparty = counterparty.String
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	for i := range txns {
		splits, err := getSplits(ctx, s.db, txns[i].ID)
		if err != nil {
			return nil, err
		}
		txns[i].Splits = splits
	}

	return txns, nil
}

// UpdateSplits replaces a transaction's splits. The caller supplies the
// version it read; a stale version fails with a Conflict error and nothing
// is written.
func (s *SQLiteStorage) UpdateSplits(ctx context.Context, id string, splits []model.Split, expectedVersion int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := updateSplits(ctx, tx, id, splits, expectedVersion); err != nil {
		return err
	}

	return tx.Commit()
}

func updateSplits(ctx context.Context, q querier, id string, splits []model.Split, expectedVersion int) error {
	txn, err := getTransactionByID(ctx, q, id)
	if err != nil {
		return err
	}

	// An empty split set is a valid state (undo leaves the transaction
	// unassigned); a non-empty set must cover the absolute amount.
	if len(splits) > 0 {
		if err := txn.ValidateSplits(splits); err != nil {
			return common.ValidationError("%v", err)
		}
	}

	res, err := q.ExecContext(ctx,
		`UPDATE transactions SET version = version + 1 WHERE id = ? AND version = ?`,
		id, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to bump transaction version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return common.ConflictError("transaction %s was modified concurrently (expected version %d, found %d)",
			id, expectedVersion, txn.Version)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM splits WHERE transaction_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear splits: %w", err)
	}

	for _, sp := range splits {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO splits (transaction_id, category_id, amount, note) VALUES (?, ?, ?, ?)`,
			id, sp.CategoryID, sp.Amount, sp.Note,
		); err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	return nil
}
