package domain

import "errors"

// Model is the narrow capability interface every loaded artifact adapts
// to. The core never inspects artifact internals beyond these methods.
type Model interface {
	// Predict returns one raw label per input row.
	Predict(rows [][]float64) ([]float64, error)
}

// ProbabilityPredictor is implemented by models that can emit class
// probability vectors ([p_no_return, p_return] per row).
type ProbabilityPredictor interface {
	PredictProbabilities(rows [][]float64) ([][]float64, error)
}

// FeatureNamer is implemented by models that declare their trained
// column names, in training order.
type FeatureNamer interface {
	FeatureNames() []string
}

// ImportanceReporter is implemented by models that expose per-feature
// importances, positionally matching FeatureNames.
type ImportanceReporter interface {
	FeatureImportances() []float64
}

// Slot identifies which model produced a prediction.
type Slot string

const (
	SlotPrimary  Slot = "primary"
	SlotFallback Slot = "fallback"
	SlotDummy    Slot = "dummy"
)

// Metadata is the offline-training metadata document loaded next to the
// artifacts.
type Metadata struct {
	ModelType    string   `json:"model_type,omitempty"`
	Accuracy     float64  `json:"accuracy,omitempty"`
	TrainedAt    string   `json:"trained_at,omitempty"`
	FeatureNames []string `json:"feature_names,omitempty"`
	Note         string   `json:"note,omitempty"`
}

var (
	// ErrModelUnavailable signals that neither the primary nor the
	// fallback artifact loaded; the engine recovers with the dummy model.
	ErrModelUnavailable = errors.New("model_unavailable")
	// ErrPredictionFailed signals that every available slot failed to
	// produce a usable prediction.
	ErrPredictionFailed = errors.New("prediction_failed")
)
