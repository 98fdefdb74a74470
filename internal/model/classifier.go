package model

import "time"

// ModelMetrics holds the evaluation results of a trained classifier model.
type ModelMetrics struct {
	Accuracy   float64 `json:"accuracy"` // Macro accuracy over the evaluation partition
	F1         float64 `json:"f1"`
	LogLoss    float64 `json:"log_loss"`
	Examples   int     `json:"examples"`
	Categories int     `json:"categories"`
}

// ClassifierModel is one immutable trained model row. There is no stored
// "active" flag: the active model is always the highest-version row that is
// not archived. Rows are retired by archiving, never deleted.
type ClassifierModel struct {
	TrainedAt time.Time
	Payload   []byte // Opaque serialized model
	Metrics   ModelMetrics
	ID        int64
	Version   int
	Archived  bool
}
