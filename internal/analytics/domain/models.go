package domain

import (
	"context"
	"time"

	predictiondomain "github.com/smallbiznis/returnsight/internal/prediction/domain"
)

// Dashboard is the operator overview over a trailing window.
type Dashboard struct {
	WindowDays      int              `json:"window_days"`
	TotalPredicted  int64            `json:"total_predictions"`
	PredictedReturn int64            `json:"predicted_returns"`
	ReturnRate      float64          `json:"return_rate"`
	AvgProbability  float64          `json:"avg_return_probability"`
	AvgConfidence   float64          `json:"avg_confidence"`
	RiskBreakdown   map[string]int64 `json:"risk_breakdown"`
	RevenueAtRisk   float64          `json:"revenue_at_risk"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// RevenueImpact estimates the order value threatened by predicted
// returns over a trailing window.
type RevenueImpact struct {
	WindowDays        int       `json:"window_days"`
	TotalOrderValue   float64   `json:"total_order_value"`
	PredictedReturns  int64     `json:"predicted_returns"`
	ValueAtRisk       float64   `json:"value_at_risk"`
	AtRiskShare       float64   `json:"at_risk_share"`
	AvgReturnValue    float64   `json:"avg_return_order_value"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// KPIs are the headline business indicators.
type KPIs struct {
	WindowDays        int       `json:"window_days"`
	PredictionVolume  int64     `json:"prediction_volume"`
	ReturnRate        float64   `json:"predicted_return_rate"`
	HighRiskShare     float64   `json:"high_risk_share"`
	RevenueAtRisk     float64   `json:"revenue_at_risk"`
	AvgConfidence     float64   `json:"avg_confidence"`
	GeneratedAt       time.Time `json:"generated_at"`
}

type RecentRequest struct {
	RiskLevel  string
	WillReturn *bool
	Limit      int
}

type TrendPoint struct {
	Day         string  `json:"day"`
	Predictions int64   `json:"predictions"`
	Returns     int64   `json:"predicted_returns"`
	ReturnRate  float64 `json:"return_rate"`
	AvgRisk     float64 `json:"avg_return_probability"`
	OrderValue  float64 `json:"order_value"`
	ValueAtRisk float64 `json:"value_at_risk"`
}

type Service interface {
	Dashboard(ctx context.Context, days int) (Dashboard, error)
	Recent(ctx context.Context, req RecentRequest) ([]predictiondomain.Prediction, error)
	RevenueImpact(ctx context.Context, days int) (RevenueImpact, error)
	Trends(ctx context.Context, days int) ([]TrendPoint, error)
	KPIs(ctx context.Context, days int) (KPIs, error)
}
