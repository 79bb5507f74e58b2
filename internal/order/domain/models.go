package domain

import (
	"context"
	"errors"
	"time"
)

// RawOrder is the user-supplied order record, accepted as JSON or as a
// parsed CSV row. Never persisted as-is.
type RawOrder struct {
	OrderID         string   `json:"order_id,omitempty"`
	Price           float64  `json:"price"`
	Quantity        int      `json:"quantity"`
	ProductCategory string   `json:"product_category"`
	Gender          string   `json:"gender"`
	PaymentMethod   string   `json:"payment_method"`
	Age             int      `json:"age"`
	Location        string   `json:"location"`
	DiscountApplied *float64 `json:"discount_applied,omitempty"`
	ShippingMethod  string   `json:"shipping_method,omitempty"`
	OrderDate       string   `json:"order_date,omitempty"`
}

// ValidatedOrder is a RawOrder after coercion and default substitution.
// Every required field is present and within declared bounds.
type ValidatedOrder struct {
	Price           float64
	Quantity        int
	ProductCategory string
	Gender          string
	PaymentMethod   string
	Age             int
	Location        string
	DiscountApplied float64
	ShippingMethod  string
	OrderDate       string
}

// OrderResult is the uniform envelope for a processed order.
type OrderResult struct {
	Success             bool           `json:"success"`
	OrderID             string         `json:"order_id"`
	WillReturn          bool           `json:"will_return"`
	ReturnProbability   float64        `json:"return_probability"`
	ConfidenceScore     float64        `json:"confidence_score"`
	RiskLevel           string         `json:"risk_level,omitempty"`
	ModelUsed           string         `json:"model_used,omitempty"`
	Recommendations     []string       `json:"recommendations,omitempty"`
	Features            map[string]any `json:"features,omitempty"`
	Error               string         `json:"error,omitempty"`
	ProcessingTimestamp time.Time      `json:"processing_timestamp"`
}

// BatchResult summarizes a partial-success batch run. One bad row never
// aborts the batch.
type BatchResult struct {
	Success             bool          `json:"success"`
	BatchSize           int           `json:"batch_size"`
	SuccessfulCount     int           `json:"successful_count"`
	FailedCount         int           `json:"failed_count"`
	Results             []OrderResult `json:"results"`
	Summary             BatchSummary  `json:"summary"`
	ProcessingTimestamp time.Time     `json:"processing_timestamp"`
}

type BatchSummary struct {
	HighRisk        int     `json:"high_risk"`
	MediumRisk      int     `json:"medium_risk"`
	LowRisk         int     `json:"low_risk"`
	RequiringReview int     `json:"total_orders_requiring_review"`
	SuccessRate     float64 `json:"processing_success_rate"`
}

// Stats reports orchestrator counters.
type Stats struct {
	TotalProcessed int64     `json:"total_processed"`
	LastUpdated    time.Time `json:"last_updated"`
}

type Service interface {
	// Process runs the full orchestration with the adult-purchaser age
	// policy. Predict is the quick path with the wide historical policy,
	// used by the predict endpoints and the CSV upload worker.
	Process(ctx context.Context, raw RawOrder) OrderResult
	ProcessBatch(ctx context.Context, raws []RawOrder) BatchResult
	Predict(ctx context.Context, raw RawOrder) OrderResult
	PredictBatch(ctx context.Context, raws []RawOrder) BatchResult
	Stats() Stats
}

var (
	ErrEmptyBatch = errors.New("empty_batch")
)
