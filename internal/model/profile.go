package model

import (
	"math"
	"time"
)

// amountBuckets holds the fixed bucket boundaries, upper bound exclusive.
var amountBuckets = []struct {
	label string
	upper float64
}{
	{"0-10", 10},
	{"10-25", 25},
	{"25-50", 50},
	{"50-100", 100},
	{"100-250", 250},
	{"250-1000", 1000},
}

// AmountBucket maps an amount onto one of seven fixed bucket labels. The
// absolute value is bucketed, so income and expense amounts land in the same
// bucket. Boundaries are exclusive on the upper edge: AmountBucket(10) is
// "10-25", not "0-10".
func AmountBucket(amount float64) string {
	abs := math.Abs(amount)
	for _, b := range amountBuckets {
		if abs < b.upper {
			return b.label
		}
	}
	return "1000+"
}

// LearningProfile holds per-category frequency statistics aggregated from
// labeled examples. Counters only ever grow; the feedback path is the sole
// writer.
type LearningProfile struct {
	UpdatedAt          time.Time
	WordCounts         map[string]int
	CounterpartyCounts map[string]int
	BucketCounts       map[string]int
	CategoryID         int
}

// NewLearningProfile creates an empty profile for a category.
func NewLearningProfile(categoryID int) *LearningProfile {
	return &LearningProfile{
		CategoryID:         categoryID,
		WordCounts:         make(map[string]int),
		CounterpartyCounts: make(map[string]int),
		BucketCounts:       make(map[string]int),
	}
}

// TotalWordMass returns the sum of all word counts.
func (p *LearningProfile) TotalWordMass() int {
	var total int
	for _, c := range p.WordCounts {
		total += c
	}
	return total
}

// TotalCounterpartyMass returns the sum of all counterparty counts.
func (p *LearningProfile) TotalCounterpartyMass() int {
	var total int
	for _, c := range p.CounterpartyCounts {
		total += c
	}
	return total
}

// TotalBucketMass returns the sum of all bucket counts.
func (p *LearningProfile) TotalBucketMass() int {
	var total int
	for _, c := range p.BucketCounts {
		total += c
	}
	return total
}

// Observe extends the profile with one labeled transaction.
func (p *LearningProfile) Observe(tokens []string, counterparty string, amount float64) {
	for _, tok := range tokens {
		p.WordCounts[tok]++
	}
	if counterparty != "" {
		p.CounterpartyCounts[counterparty]++
	}
	p.BucketCounts[AmountBucket(amount)]++
}
