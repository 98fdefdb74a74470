// Package model defines the core domain types for budgeteer.
package model

import (
	"crypto/sha256"
	"fmt"
	"math"
	"time"
)

// SplitTolerance is the maximum rounding difference allowed between the sum
// of a transaction's splits and its absolute amount.
const SplitTolerance = 0.01

// Transaction represents a single bank transaction imported from a statement.
type Transaction struct {
	Date         time.Time
	ID           string
	AccountID    string
	Description  string // Raw statement description
	Counterparty string // Counterparty identifier, e.g. an IBAN
	Hash         string
	Amount       float64 // Signed: negative for expenses
	Version      int     // Optimistic concurrency token, bumped on every split mutation
	Splits       []Split
	Archived     bool
}

// Split assigns part of a transaction's amount to a budget category.
type Split struct {
	ID         int64
	CategoryID int
	Amount     float64
	Note       string
}

// GenerateHash creates a stable hash for duplicate detection during import.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// AbsAmount returns the unsigned transaction amount.
func (t *Transaction) AbsAmount() float64 {
	return math.Abs(t.Amount)
}

// IsAssigned reports whether the transaction has at least one split.
func (t *Transaction) IsAssigned() bool {
	return len(t.Splits) > 0
}

// SplitSum returns the sum of all split amounts.
func (t *Transaction) SplitSum() float64 {
	var sum float64
	for _, s := range t.Splits {
		sum += s.Amount
	}
	return sum
}

// ValidateSplits checks that the given splits cover the absolute transaction
// amount within SplitTolerance.
func (t *Transaction) ValidateSplits(splits []Split) error {
	var sum float64
	for _, s := range splits {
		if s.CategoryID <= 0 {
			return fmt.Errorf("split requires a category")
		}
		sum += s.Amount
	}
	if diff := math.Abs(sum - t.AbsAmount()); diff > SplitTolerance {
		return fmt.Errorf("splits sum to %.2f, expected %.2f (tolerance %.2f)",
			sum, t.AbsAmount(), SplitTolerance)
	}
	return nil
}
