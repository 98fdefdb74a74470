package model

import "time"

// RuleMatchType determines how a rule pattern is compared to a transaction.
type RuleMatchType string

const (
	// MatchSubstring matches when the pattern is a case-insensitive substring
	// of the transaction description.
	MatchSubstring RuleMatchType = "substring"
	// MatchCounterparty matches when the pattern equals the counterparty
	// identifier exactly.
	MatchCounterparty RuleMatchType = "counterparty"
	// MatchRegex matches when the pattern is a regular expression matching
	// the transaction description.
	MatchRegex RuleMatchType = "regex"
)

// Rule is a user-managed category override evaluated before any statistical
// suggestion. Among matching rules the highest priority wins; equal
// priorities fall back to the lowest rule ID.
type Rule struct {
	CreatedAt  time.Time
	UpdatedAt  time.Time
	MatchType  RuleMatchType
	Pattern    string
	ID         int
	CategoryID int
	Priority   int
	IsActive   bool
}
