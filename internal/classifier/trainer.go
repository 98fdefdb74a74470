package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/model"
	"github.com/mdejong/budgeteer/internal/service"
)

// TrainerConfig holds the training hyperparameters and the approval gate.
type TrainerConfig struct {
	MinExamplesPerCategory int
	ApprovalF1             float64
	Rounds                 int
	LearningRate           float64
	Seed                   int64
}

// DefaultTrainerConfig returns the default training configuration.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		MinExamplesPerCategory: 5,
		ApprovalF1:             0.75,
		Rounds:                 25,
		LearningRate:           0.3,
		Seed:                   42,
	}
}

// evalFraction is the share of examples held out for evaluation.
const evalFraction = 0.2

// Trainer fits versioned classifier models from the labeled-example corpus.
//
// The mutex serializes whole training runs: version assignment happens in a
// single INSERT on the storage side, but serializing here also prevents two
// concurrent runs from burning CPU to produce a model that is immediately
// superseded.
type Trainer struct {
	storage  service.Storage
	progress func(round, total int)
	cfg      TrainerConfig
	mu       sync.Mutex
}

// NewTrainer creates a trainer.
func NewTrainer(storage service.Storage, cfg TrainerConfig) *Trainer {
	return &Trainer{storage: storage, cfg: cfg}
}

// OnProgress registers a callback invoked after each boosting round,
// once per category learner.
func (t *Trainer) OnProgress(fn func(round, total int)) {
	t.progress = fn
}

// Train fits a new model from labeled examples within the rolling window
// and persists it as the next version. When the evaluation F1 reaches the
// approval gate the new version becomes active; otherwise it is stored
// archived, awaiting manual activation.
//
// Fails with an InsufficientData error when the window holds no examples,
// or when every category falls below the per-category minimum. A partial
// shortfall (some categories below minimum) is only logged.
func (t *Trainer) Train(ctx context.Context, windowDays int) (*model.ClassifierModel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if windowDays <= 0 {
		return nil, common.ValidationError("training window must be positive, got %d days", windowDays)
	}

	since := time.Now().UTC().AddDate(0, 0, -windowDays)
	examples, err := t.storage.GetLabeledExamplesSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load labeled examples: %w", err)
	}
	if len(examples) == 0 {
		return nil, common.InsufficientDataError("no labeled examples in the last %d days", windowDays)
	}

	perCategory := make(map[int]int)
	for _, ex := range examples {
		perCategory[ex.CategoryID]++
	}

	var anySufficient bool
	for categoryID, count := range perCategory {
		if count >= t.cfg.MinExamplesPerCategory {
			anySufficient = true
		} else {
			slog.Warn("Category below example minimum, training anyway",
				"category_id", categoryID,
				"examples", count,
				"minimum", t.cfg.MinExamplesPerCategory)
		}
	}
	if !anySufficient {
		return nil, common.InsufficientDataError(
			"every category has fewer than %d examples in the last %d days",
			t.cfg.MinExamplesPerCategory, windowDays)
	}

	xs, ys, err := t.buildDataset(ctx, examples)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, common.InsufficientDataError("no labeled example resolved to a stored transaction")
	}

	trainX, trainY, evalX, evalY := partition(xs, ys, t.cfg.Seed)

	mcm, err := t.fit(ctx, trainX, trainY)
	if err != nil {
		return nil, err // Canceled mid-fit: nothing persisted
	}

	if len(evalX) == 0 {
		slog.Warn("Corpus too small for a held-out partition, evaluating on training data")
		evalX, evalY = trainX, trainY
	}
	metrics := evaluate(mcm, evalX, evalY)
	metrics.Examples = len(xs)
	metrics.Categories = len(mcm.CategoryIDs)

	payload, err := json.Marshal(mcm)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize model: %w", err)
	}

	approved := metrics.F1 >= t.cfg.ApprovalF1
	stored, err := t.storage.CreateClassifierModel(ctx, payload, metrics, !approved)
	if err != nil {
		return nil, fmt.Errorf("failed to persist model: %w", err)
	}

	slog.Info("Trained classifier model",
		"version", stored.Version,
		"examples", metrics.Examples,
		"categories", metrics.Categories,
		"accuracy", metrics.Accuracy,
		"f1", metrics.F1,
		"log_loss", metrics.LogLoss,
		"approved", approved)

	return stored, nil
}

// buildDataset resolves examples to transactions and extracts features.
// Examples whose transaction has disappeared are skipped and logged.
func (t *Trainer) buildDataset(ctx context.Context, examples []model.LabeledExample) ([][]float64, []int, error) {
	xs := make([][]float64, 0, len(examples))
	ys := make([]int, 0, len(examples))

	for _, ex := range examples {
		txn, err := t.storage.GetTransactionByID(ctx, ex.TransactionID)
		if err != nil {
			if common.IsExpected(err) {
				slog.Warn("Skipping example with missing transaction",
					"transaction_id", ex.TransactionID)
				continue
			}
			return nil, nil, fmt.Errorf("failed to load transaction %s: %w", ex.TransactionID, err)
		}
		xs = append(xs, Extract(txn))
		ys = append(ys, ex.CategoryID)
	}

	return xs, ys, nil
}

// fit trains one binary learner per category, one-vs-all.
func (t *Trainer) fit(ctx context.Context, xs [][]float64, ys []int) (*MulticlassModel, error) {
	categorySet := make(map[int]struct{})
	for _, y := range ys {
		categorySet[y] = struct{}{}
	}
	categoryIDs := make([]int, 0, len(categorySet))
	for id := range categorySet {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Ints(categoryIDs)

	mcm := &MulticlassModel{
		Learners:    make(map[int]*BinaryModel, len(categoryIDs)),
		CategoryIDs: categoryIDs,
		WireVersion: wireVersion,
		Dim:         featureDim,
	}

	labels := make([]float64, len(ys))
	for i, categoryID := range categoryIDs {
		for j, y := range ys {
			if y == categoryID {
				labels[j] = 1
			} else {
				labels[j] = 0
			}
		}

		learner, err := trainBinary(ctx, xs, labels, t.cfg.Rounds, t.cfg.LearningRate)
		if err != nil {
			return nil, err
		}
		mcm.Learners[categoryID] = learner

		if t.progress != nil {
			t.progress(i+1, len(categoryIDs))
		}
	}

	return mcm, nil
}

// partition shuffles deterministically and splits 80/20. The fixed seed
// makes training runs reproducible for the same corpus.
func partition(xs [][]float64, ys []int, seed int64) (trainX [][]float64, trainY []int, evalX [][]float64, evalY []int) {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- reproducible split, not crypto
	rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	evalN := int(math.Floor(float64(len(xs)) * evalFraction))
	for i, j := range idx {
		if i < evalN {
			evalX = append(evalX, xs[j])
			evalY = append(evalY, ys[j])
		} else {
			trainX = append(trainX, xs[j])
			trainY = append(trainY, ys[j])
		}
	}
	return trainX, trainY, evalX, evalY
}

// evaluate computes macro accuracy, log-loss, and the derived F1
// approximation f1 = 2*acc/(1+acc).
func evaluate(m *MulticlassModel, xs [][]float64, ys []int) model.ModelMetrics {
	perCategoryTotal := make(map[int]int)
	perCategoryHit := make(map[int]int)
	var logLoss float64

	for i, x := range xs {
		predicted, _ := m.Best(x)
		perCategoryTotal[ys[i]]++
		if predicted == ys[i] {
			perCategoryHit[ys[i]]++
		}

		probs := m.Probabilities(x)
		logLoss += -math.Log(clampProb(probs[ys[i]]))
	}

	var macroSum float64
	for categoryID, total := range perCategoryTotal {
		macroSum += float64(perCategoryHit[categoryID]) / float64(total)
	}

	var metrics model.ModelMetrics
	if len(perCategoryTotal) > 0 {
		metrics.Accuracy = macroSum / float64(len(perCategoryTotal))
	}
	if len(xs) > 0 {
		metrics.LogLoss = logLoss / float64(len(xs))
	}
	metrics.F1 = 2 * metrics.Accuracy / (1 + metrics.Accuracy)
	return metrics
}
