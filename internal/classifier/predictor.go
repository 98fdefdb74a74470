package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/model"
	"github.com/mdejong/budgeteer/internal/scoring"
	"github.com/mdejong/budgeteer/internal/service"
)

// loadedModel pairs a deserialized model with the version it came from.
type loadedModel struct {
	model   *MulticlassModel
	version int
}

// Predictor serves predictions from the active model version.
//
// The deserialized model is cached behind an atomic pointer: many
// concurrent predictions read it, and it is swapped wholesale when the
// active version changes, so readers never observe a half-loaded model.
type Predictor struct {
	storage service.Storage
	cached  atomic.Pointer[loadedModel]
}

// NewPredictor creates a predictor.
func NewPredictor(storage service.Storage) *Predictor {
	return &Predictor{storage: storage}
}

// Predict returns the model's suggestion for a transaction.
//
// Fails with NotFound when the transaction does not exist and with
// ModelUnavailable when no model is active.
func (p *Predictor) Predict(ctx context.Context, transactionID string) (*model.Suggestion, error) {
	txn, err := p.storage.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return p.PredictTransaction(ctx, txn)
}

// PredictTransaction is Predict for an already-loaded transaction; the
// sweep uses it to avoid re-reading every row.
func (p *Predictor) PredictTransaction(ctx context.Context, txn *model.Transaction) (*model.Suggestion, error) {
	active, err := p.storage.GetActiveClassifierModel(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: train a model first", common.ErrModelUnavailable)
		}
		return nil, err
	}

	mcm, err := p.load(active)
	if err != nil {
		return nil, err
	}

	x := Extract(txn)
	categoryID, confidence := mcm.Best(x)

	category, err := p.storage.GetCategoryByID(ctx, categoryID)
	if err != nil && !common.IsExpected(err) {
		return nil, err
	}
	categoryName := ""
	if category != nil {
		categoryName = category.Name
	}

	version := active.Version
	return &model.Suggestion{
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Confidence:   confidence,
		Source:       model.SourceModel,
		ModelVersion: &version,
		TopFeatures:  explain(txn),
	}, nil
}

// load returns the cached model, reloading when the active version has
// moved since the last prediction.
func (p *Predictor) load(active *model.ClassifierModel) (*MulticlassModel, error) {
	if cached := p.cached.Load(); cached != nil && cached.version == active.Version {
		return cached.model, nil
	}

	var mcm MulticlassModel
	if err := json.Unmarshal(active.Payload, &mcm); err != nil {
		return nil, fmt.Errorf("failed to deserialize model version %d: %w", active.Version, err)
	}
	if mcm.WireVersion != wireVersion {
		return nil, fmt.Errorf("model version %d has wire version %d, expected %d",
			active.Version, mcm.WireVersion, wireVersion)
	}

	p.cached.Store(&loadedModel{model: &mcm, version: active.Version})
	return &mcm, nil
}

// explain builds a small heuristic ranking of contributing signals. It is
// illustrative only, not a rigorous feature-importance method.
func explain(txn *model.Transaction) []string {
	var features []string

	tokens := scoring.Tokenize(txn.Description)
	for i, tok := range tokens {
		if i == 3 {
			break
		}
		features = append(features, "token:"+tok)
	}
	if txn.Counterparty != "" {
		features = append(features, "counterparty:"+txn.Counterparty)
	}
	features = append(features, "bucket:"+model.AmountBucket(txn.Amount))
	if wd := txn.Date.Weekday(); wd == 0 || wd == 6 {
		features = append(features, "weekend")
	}

	return features
}
