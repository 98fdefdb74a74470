// Package classifier implements the trainable transaction classifier: fixed
// feature extraction, a gradient-boosted training loop with versioned model
// persistence, and a prediction path with an atomically swapped model cache.
package classifier

import (
	"hash/fnv"

	"github.com/mdejong/budgeteer/internal/model"
	"github.com/mdejong/budgeteer/internal/scoring"
)

// Feature vector layout. Tokens and counterparties are hashed into fixed
// slot ranges; the tail holds numeric and flag features. The layout is part
// of the serialized model contract: changing it invalidates stored models,
// so bump wireVersion when touching it.
const (
	tokenSlots        = 192
	counterpartySlots = 32
	bucketSlots       = 7

	idxBucketBase   = tokenSlots + counterpartySlots
	idxAmount       = idxBucketBase + bucketSlots
	idxAbsAmount    = idxAmount + 1
	idxDayOfWeek    = idxAbsAmount + 1
	idxMonth        = idxDayOfWeek + 1
	idxQuarter      = idxMonth + 1
	idxIncome       = idxQuarter + 1
	idxWeekend      = idxIncome + 1
	featureDim      = idxWeekend + 1
)

var bucketIndex = map[string]int{
	"0-10":     0,
	"10-25":    1,
	"25-50":    2,
	"50-100":   3,
	"100-250":  4,
	"250-1000": 5,
	"1000+":    6,
}

// Extract maps a transaction onto the fixed-width feature vector.
func Extract(txn *model.Transaction) []float64 {
	x := make([]float64, featureDim)

	for _, tok := range scoring.Tokenize(txn.Description) {
		x[hashSlot(tok, tokenSlots)] = 1
	}
	if txn.Counterparty != "" {
		x[tokenSlots+hashSlot(txn.Counterparty, counterpartySlots)] = 1
	}

	x[idxBucketBase+bucketIndex[model.AmountBucket(txn.Amount)]] = 1

	x[idxAmount] = txn.Amount
	x[idxAbsAmount] = txn.AbsAmount()
	x[idxDayOfWeek] = float64(txn.Date.Weekday())
	x[idxMonth] = float64(txn.Date.Month())
	x[idxQuarter] = float64((int(txn.Date.Month())-1)/3 + 1)
	if txn.Amount > 0 {
		x[idxIncome] = 1
	}
	if wd := txn.Date.Weekday(); wd == 0 || wd == 6 {
		x[idxWeekend] = 1
	}

	return x
}

func hashSlot(s string, slots int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(slots)) // #nosec G115 -- slots is a small constant
}
