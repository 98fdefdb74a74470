package model

import "time"

// LabeledExample is one row of the append-only training corpus: a
// transaction/category pair with provenance. A later example for the same
// transaction supersedes earlier ones without deleting them.
type LabeledExample struct {
	CreatedAt     time.Time
	TransactionID string
	Confidence    *float64 // Suggestion confidence, when one was shown
	ModelVersion  *int     // Model that produced the suggestion, when any
	ID            int64
	CategoryID    int
	AutoApplied   bool // Whether the assignment was written without confirmation
	Accepted      bool // Whether the user kept the original suggestion
}
