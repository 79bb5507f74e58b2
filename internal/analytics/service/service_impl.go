package service

import (
	"context"

	"github.com/smallbiznis/returnsight/internal/analytics/domain"
	"github.com/smallbiznis/returnsight/internal/clock"
	predictiondomain "github.com/smallbiznis/returnsight/internal/prediction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultWindowDays = 30

type Params struct {
	fx.In

	Log         *zap.Logger
	Clock       clock.Clock
	Predictions predictiondomain.Service
}

// Service derives the analytics views from the prediction store. It
// holds no state of its own.
type Service struct {
	log         *zap.Logger
	clock       clock.Clock
	predictions predictiondomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:         p.Log.Named("analytics.service"),
		clock:       p.Clock,
		predictions: p.Predictions,
	}
}

func (s *Service) Dashboard(ctx context.Context, days int) (domain.Dashboard, error) {
	days = normalizeWindow(days)

	summary, err := s.predictions.Summarize(ctx, days)
	if err != nil {
		return domain.Dashboard{}, err
	}
	agg, err := s.predictions.Rollup(ctx, days)
	if err != nil {
		return domain.Dashboard{}, err
	}

	return domain.Dashboard{
		WindowDays:      days,
		TotalPredicted:  summary.TotalPredicted,
		PredictedReturn: summary.PredictedReturn,
		ReturnRate:      summary.ReturnRate,
		AvgProbability:  summary.AvgProbability,
		AvgConfidence:   summary.AvgConfidence,
		RiskBreakdown:   summary.RiskBreakdown,
		RevenueAtRisk:   agg.ReturnValue,
		GeneratedAt:     s.clock.Now(),
	}, nil
}

func (s *Service) Recent(ctx context.Context, req domain.RecentRequest) ([]predictiondomain.Prediction, error) {
	return s.predictions.Recent(ctx, predictiondomain.RecentRequest{
		RiskLevel:  req.RiskLevel,
		WillReturn: req.WillReturn,
		Limit:      req.Limit,
	})
}

func (s *Service) RevenueImpact(ctx context.Context, days int) (domain.RevenueImpact, error) {
	days = normalizeWindow(days)

	agg, err := s.predictions.Rollup(ctx, days)
	if err != nil {
		return domain.RevenueImpact{}, err
	}

	impact := domain.RevenueImpact{
		WindowDays:       days,
		TotalOrderValue:  agg.TotalOrderValue,
		PredictedReturns: agg.Returns,
		ValueAtRisk:      agg.ReturnValue,
		GeneratedAt:      s.clock.Now(),
	}
	if agg.TotalOrderValue > 0 {
		impact.AtRiskShare = agg.ReturnValue / agg.TotalOrderValue
	}
	if agg.Returns > 0 {
		impact.AvgReturnValue = agg.ReturnValue / float64(agg.Returns)
	}
	return impact, nil
}

func (s *Service) Trends(ctx context.Context, days int) ([]domain.TrendPoint, error) {
	days = normalizeWindow(days)

	rows, err := s.predictions.Trends(ctx, days)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TrendPoint, 0, len(rows))
	for _, row := range rows {
		point := domain.TrendPoint{
			Day:         row.Day,
			Predictions: row.Total,
			Returns:     row.Returns,
			AvgRisk:     row.AvgRisk,
			OrderValue:  row.OrderValue,
			ValueAtRisk: row.ReturnValue,
		}
		if row.Total > 0 {
			point.ReturnRate = float64(row.Returns) / float64(row.Total)
		}
		out = append(out, point)
	}
	return out, nil
}

func (s *Service) KPIs(ctx context.Context, days int) (domain.KPIs, error) {
	days = normalizeWindow(days)

	summary, err := s.predictions.Summarize(ctx, days)
	if err != nil {
		return domain.KPIs{}, err
	}
	agg, err := s.predictions.Rollup(ctx, days)
	if err != nil {
		return domain.KPIs{}, err
	}

	kpis := domain.KPIs{
		WindowDays:       days,
		PredictionVolume: summary.TotalPredicted,
		ReturnRate:       summary.ReturnRate,
		RevenueAtRisk:    agg.ReturnValue,
		AvgConfidence:    summary.AvgConfidence,
		GeneratedAt:      s.clock.Now(),
	}
	if summary.TotalPredicted > 0 {
		kpis.HighRiskShare = float64(summary.RiskBreakdown["HIGH"]) / float64(summary.TotalPredicted)
	}
	return kpis, nil
}

func normalizeWindow(days int) int {
	if days <= 0 || days > 365 {
		return defaultWindowDays
	}
	return days
}
