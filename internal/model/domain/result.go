package domain

import "time"

// RiskLevel buckets a return probability on fixed thresholds, inclusive
// on the lower band.
type RiskLevel string

const (
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskUnknown RiskLevel = "UNKNOWN"
)

// RiskLevelFor maps a probability to its tier: <=low LOW, <=medium
// MEDIUM, above HIGH.
func RiskLevelFor(probability, low, medium float64) RiskLevel {
	switch {
	case probability <= low:
		return RiskLow
	case probability <= medium:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// FeatureImportance pairs a column name with its model importance.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// PredictionResult is the uniform outcome of a prediction call. Predict
// never raises to its caller: on total failure Success is false and the
// risk level is UNKNOWN, so batch jobs continue past individual failures.
type PredictionResult struct {
	Success           bool                `json:"success"`
	WillReturn        bool                `json:"will_return"`
	ReturnProbability float64             `json:"return_probability"`
	ConfidenceScore   float64             `json:"confidence_score"`
	RiskLevel         RiskLevel           `json:"risk_level"`
	ModelUsed         Slot                `json:"model_used,omitempty"`
	ModelType         string              `json:"model_type,omitempty"`
	FeatureImportance []FeatureImportance `json:"feature_importance,omitempty"`
	Error             string              `json:"error,omitempty"`
	Timestamp         time.Time           `json:"timestamp"`
}

// SlotHealth reports whether an artifact loaded.
type SlotHealth struct {
	Primary  bool `json:"primary"`
	Fallback bool `json:"fallback"`
}

// Health is the engine health-check document. A service with no real
// artifacts still reports healthy: the dummy model keeps it serving.
type Health struct {
	Status         string     `json:"status"`
	ModelsLoaded   SlotHealth `json:"models_loaded"`
	TestPrediction string     `json:"test_prediction,omitempty"`
	Error          string     `json:"error,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}

// Info describes the loaded slots and metadata for the model-info
// endpoint.
type Info struct {
	Primary   SlotInfo            `json:"primary_model"`
	Fallback  SlotInfo            `json:"fallback_model"`
	Metadata  map[string]Metadata `json:"metadata,omitempty"`
	ModelsDir string              `json:"models_directory"`
}

type SlotInfo struct {
	Loaded bool   `json:"loaded"`
	Type   string `json:"type,omitempty"`
}
