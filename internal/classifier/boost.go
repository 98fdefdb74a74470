package classifier

import (
	"context"
	"math"
	"sort"
)

// wireVersion guards the serialized model layout. A payload with a
// different wire version is rejected at load time instead of silently
// producing garbage predictions.
const wireVersion = 1

// Stump is a single depth-one regression tree fit to pseudo-residuals.
type Stump struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      float64 `json:"l"`
	Right     float64 `json:"r"`
}

// BinaryModel is one gradient-boosted binary learner: a bias plus a sum of
// stump contributions passed through a logistic link.
type BinaryModel struct {
	Stumps       []Stump `json:"stumps"`
	Bias         float64 `json:"bias"`
	LearningRate float64 `json:"learning_rate"`
}

// MulticlassModel combines one binary learner per category, one-vs-all.
// Per-category logistic outputs are normalized into a distribution.
type MulticlassModel struct {
	Learners    map[int]*BinaryModel `json:"learners"` // keyed by category ID
	CategoryIDs []int                `json:"category_ids"`
	WireVersion int                  `json:"wire_version"`
	Dim         int                  `json:"dim"`
}

// maxThresholds caps the candidate split points tried per numeric feature.
const maxThresholds = 8

// trainBinary fits a boosted-stump model with logistic loss. Rounds are
// separated by a context check so a long fit can be canceled cleanly; a
// canceled fit returns ctx.Err() and nothing is persisted by the caller.
func trainBinary(ctx context.Context, xs [][]float64, ys []float64, rounds int, learningRate float64) (*BinaryModel, error) {
	n := len(xs)
	m := &BinaryModel{LearningRate: learningRate}

	// Prior log-odds as the starting bias.
	var pos float64
	for _, y := range ys {
		pos += y
	}
	p := clampProb(pos / float64(n))
	m.Bias = math.Log(p / (1 - p))

	raw := make([]float64, n)
	for i := range raw {
		raw[i] = m.Bias
	}

	thresholds := candidateThresholds(xs)
	residuals := make([]float64, n)

	for round := 0; round < rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for i := range xs {
			residuals[i] = ys[i] - sigmoid(raw[i])
		}

		stump, ok := bestStump(xs, residuals, thresholds)
		if !ok {
			break // No split reduces error further
		}

		m.Stumps = append(m.Stumps, stump)
		for i, x := range xs {
			raw[i] += learningRate * stump.apply(x)
		}
	}

	return m, nil
}

func (s *Stump) apply(x []float64) float64 {
	if x[s.Feature] < s.Threshold {
		return s.Left
	}
	return s.Right
}

// bestStump finds the split minimizing squared residual error, scanning
// features and thresholds in a fixed order for determinism.
func bestStump(xs [][]float64, residuals []float64, thresholds [][]float64) (Stump, bool) {
	n := len(xs)

	var total, totalSq float64
	for _, r := range residuals {
		total += r
		totalSq += r * r
	}
	baseErr := totalSq - total*total/float64(n)

	best := Stump{}
	bestErr := baseErr
	found := false

	for f := 0; f < len(thresholds); f++ {
		for _, thr := range thresholds[f] {
			var leftSum, leftSq float64
			var leftN int
			for i, x := range xs {
				if x[f] < thr {
					leftSum += residuals[i]
					leftSq += residuals[i] * residuals[i]
					leftN++
				}
			}
			rightN := n - leftN
			if leftN == 0 || rightN == 0 {
				continue
			}

			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			err := (leftSq - leftSum*leftSum/float64(leftN)) +
				(rightSq - rightSum*rightSum/float64(rightN))

			if err < bestErr-1e-12 {
				bestErr = err
				best = Stump{
					Feature:   f,
					Threshold: thr,
					Left:      leftSum / float64(leftN),
					Right:     rightSum / float64(rightN),
				}
				found = true
			}
		}
	}

	return best, found
}

// candidateThresholds collects up to maxThresholds midpoints between
// distinct sorted values per feature. Binary features end up with the
// single threshold 0.5.
func candidateThresholds(xs [][]float64) [][]float64 {
	if len(xs) == 0 {
		return nil
	}
	dim := len(xs[0])
	out := make([][]float64, dim)

	values := make([]float64, 0, len(xs))
	for f := 0; f < dim; f++ {
		values = values[:0]
		for _, x := range xs {
			values = append(values, x[f])
		}
		sort.Float64s(values)

		var distinct []float64
		for i, v := range values {
			if i == 0 || v != values[i-1] {
				distinct = append(distinct, v)
			}
		}
		if len(distinct) < 2 {
			continue
		}

		step := 1
		if len(distinct)-1 > maxThresholds {
			step = (len(distinct) - 1) / maxThresholds
		}
		for i := step; i < len(distinct); i += step {
			out[f] = append(out[f], (distinct[i-1]+distinct[i])/2)
		}
	}

	return out
}

// Raw returns the pre-link score.
func (m *BinaryModel) Raw(x []float64) float64 {
	score := m.Bias
	for i := range m.Stumps {
		score += m.LearningRate * m.Stumps[i].apply(x)
	}
	return score
}

// Predict returns the probability of the positive class.
func (m *BinaryModel) Predict(x []float64) float64 {
	return sigmoid(m.Raw(x))
}

// Probabilities returns a normalized distribution over category IDs.
func (m *MulticlassModel) Probabilities(x []float64) map[int]float64 {
	probs := make(map[int]float64, len(m.CategoryIDs))
	var sum float64
	for _, id := range m.CategoryIDs {
		p := m.Learners[id].Predict(x)
		probs[id] = p
		sum += p
	}
	if sum > 0 {
		for id := range probs {
			probs[id] /= sum
		}
	}
	return probs
}

// Best returns the most probable category and its confidence.
func (m *MulticlassModel) Best(x []float64) (int, float64) {
	probs := m.Probabilities(x)
	bestID, bestP := 0, -1.0
	for _, id := range m.CategoryIDs {
		if p := probs[id]; p > bestP || (p == bestP && id < bestID) {
			bestID, bestP = id, p
		}
	}
	return bestID, bestP
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func clampProb(p float64) float64 {
	const eps = 1e-6
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}
