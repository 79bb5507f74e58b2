package domain

import (
	"context"
	"errors"
	"time"
)

// StoreRequest is the snapshot the orchestrator hands over after a
// prediction completes.
type StoreRequest struct {
	OrderID         string
	ProductCategory string
	ProductPrice    float64
	OrderQuantity   int
	UserAge         int
	UserGender      string
	PaymentMethod   string
	UserLocation    string
	TotalOrderValue float64

	WillReturn        bool
	ReturnProbability float64
	ConfidenceScore   float64
	RiskLevel         string
	ModelUsed         string
	Recommendations   []string
}

type RecentRequest struct {
	RiskLevel   string
	WillReturn  *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
}

// Summary is the rolled-up view over a trailing window.
type Summary struct {
	WindowDays      int                `json:"window_days"`
	TotalPredicted  int64              `json:"total_predictions"`
	PredictedReturn int64              `json:"predicted_returns"`
	ReturnRate      float64            `json:"return_rate"`
	AvgProbability  float64            `json:"avg_return_probability"`
	AvgConfidence   float64            `json:"avg_confidence"`
	RiskBreakdown   map[string]int64   `json:"risk_breakdown"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

type Service interface {
	// Store persists one prediction record. Callers treat failure as
	// non-fatal: the prediction response already went out.
	Store(ctx context.Context, req StoreRequest) error
	Recent(ctx context.Context, req RecentRequest) ([]Prediction, error)
	Summarize(ctx context.Context, days int) (Summary, error)
	Distribution(ctx context.Context, days int) ([]RiskCount, error)
	Trends(ctx context.Context, days int) ([]DailyCount, error)
	Rollup(ctx context.Context, days int) (Aggregate, error)
}

var (
	ErrInvalidOrderID = errors.New("invalid_order_id")
	ErrInvalidWindow  = errors.New("invalid_window")
)
