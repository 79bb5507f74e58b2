package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/returnsight/internal/clock"
	"github.com/smallbiznis/returnsight/internal/config"
	"github.com/smallbiznis/returnsight/internal/features"
	modeldomain "github.com/smallbiznis/returnsight/internal/model/domain"
	modelservice "github.com/smallbiznis/returnsight/internal/model/service"
	"github.com/smallbiznis/returnsight/internal/observability/metrics"
	"github.com/smallbiznis/returnsight/internal/order/domain"
	predictiondomain "github.com/smallbiznis/returnsight/internal/prediction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Clock       clock.Clock
	GenID       *snowflake.Node
	Engine      *modelservice.Engine
	Rules       *config.RulesHolder
	Predictions predictiondomain.Service
	Metrics     *metrics.Metrics `optional:"true"`
}

// Service is the order orchestrator: it runs one order through
// validation, feature extraction, engineering, inference and
// recommendation, then records the outcome.
type Service struct {
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	engine      *modelservice.Engine
	rules       *config.RulesHolder
	predictions predictiondomain.Service
	metrics     *metrics.Metrics

	processed atomic.Int64
}

func New(p Params) domain.Service {
	return &Service{
		log:         p.Log.Named("order.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		engine:      p.Engine,
		rules:       p.Rules,
		predictions: p.Predictions,
		metrics:     p.Metrics,
	}
}

func (s *Service) Process(ctx context.Context, raw domain.RawOrder) domain.OrderResult {
	return s.process(ctx, raw, domain.AgePolicyStrict)
}

func (s *Service) Predict(ctx context.Context, raw domain.RawOrder) domain.OrderResult {
	return s.process(ctx, raw, domain.AgePolicyWide)
}

func (s *Service) process(ctx context.Context, raw domain.RawOrder, policy domain.AgePolicy) domain.OrderResult {
	orderID := s.orderID(raw)

	validated, err := domain.Validate(raw, policy)
	if err != nil {
		return domain.OrderResult{
			Success:             false,
			OrderID:             orderID,
			Error:               err.Error(),
			ProcessingTimestamp: s.clock.Now(),
		}
	}
	for _, warning := range domain.SoftWarnings(raw) {
		s.log.Warn("order field substituted",
			zap.String("order_id", orderID), zap.String("warning", warning))
	}

	basic := features.Extract(validated, s.clock)
	engineered := features.EngineerOne(basic, s.clock.Now().Year())
	result := s.engine.Predict(engineered)

	return s.finish(ctx, orderID, validated, engineered, result)
}

func (s *Service) ProcessBatch(ctx context.Context, raws []domain.RawOrder) domain.BatchResult {
	return s.processBatch(ctx, raws, domain.AgePolicyStrict)
}

func (s *Service) PredictBatch(ctx context.Context, raws []domain.RawOrder) domain.BatchResult {
	return s.processBatch(ctx, raws, domain.AgePolicyWide)
}

func (s *Service) processBatch(ctx context.Context, raws []domain.RawOrder, policy domain.AgePolicy) domain.BatchResult {
	batch := domain.BatchResult{
		BatchSize:           len(raws),
		ProcessingTimestamp: s.clock.Now(),
	}
	if len(raws) == 0 {
		return batch
	}

	type pending struct {
		index     int
		orderID   string
		validated domain.ValidatedOrder
	}
	results := make([]domain.OrderResult, len(raws))
	var valid []pending
	var basics []features.BasicFeatureSet

	for i, raw := range raws {
		orderID := s.orderID(raw)
		validated, err := domain.Validate(raw, policy)
		if err != nil {
			results[i] = domain.OrderResult{
				Success:             false,
				OrderID:             orderID,
				Error:               err.Error(),
				ProcessingTimestamp: s.clock.Now(),
			}
			continue
		}
		valid = append(valid, pending{index: i, orderID: orderID, validated: validated})
		basics = append(basics, features.Extract(validated, s.clock))
	}

	// Percentile-based tiers are relative to the batch, so engineering
	// runs over all valid rows at once.
	engineered := features.Engineer(basics, s.clock.Now().Year())
	for j, p := range valid {
		prediction := s.engine.Predict(engineered[j])
		results[p.index] = s.finish(ctx, p.orderID, p.validated, engineered[j], prediction)
	}

	for _, r := range results {
		if !r.Success {
			batch.FailedCount++
			continue
		}
		batch.SuccessfulCount++
		switch r.RiskLevel {
		case string(modeldomain.RiskHigh):
			batch.Summary.HighRisk++
		case string(modeldomain.RiskMedium):
			batch.Summary.MediumRisk++
		case string(modeldomain.RiskLow):
			batch.Summary.LowRisk++
		}
	}
	batch.Results = results
	batch.Success = batch.SuccessfulCount > 0
	batch.Summary.RequiringReview = batch.Summary.HighRisk
	if batch.BatchSize > 0 {
		batch.Summary.SuccessRate = float64(batch.SuccessfulCount) / float64(batch.BatchSize)
	}
	return batch
}

func (s *Service) Stats() domain.Stats {
	return domain.Stats{
		TotalProcessed: s.processed.Load(),
		LastUpdated:    s.clock.Now(),
	}
}

// finish turns an engine result into the order envelope, attaches
// recommendations and records the prediction. Store failures are logged
// and swallowed: the caller already has its answer.
func (s *Service) finish(ctx context.Context, orderID string, validated domain.ValidatedOrder, engineered features.FeatureSet, result modeldomain.PredictionResult) domain.OrderResult {
	out := domain.OrderResult{
		Success:             result.Success,
		OrderID:             orderID,
		WillReturn:          result.WillReturn,
		ReturnProbability:   result.ReturnProbability,
		ConfidenceScore:     result.ConfidenceScore,
		RiskLevel:           string(result.RiskLevel),
		ModelUsed:           string(result.ModelUsed),
		Error:               result.Error,
		ProcessingTimestamp: s.clock.Now(),
	}
	if !result.Success {
		s.metrics.RecordPredictionFailure(ctx)
		return out
	}
	s.metrics.RecordPrediction(ctx, string(result.RiskLevel), string(result.ModelUsed))

	totalValue := validated.Price * float64(validated.Quantity)
	out.Recommendations = s.recommendations(string(result.RiskLevel), totalValue)
	out.Features = featureView(engineered)
	s.processed.Add(1)

	if err := s.predictions.Store(ctx, predictiondomain.StoreRequest{
		OrderID:           orderID,
		ProductCategory:   validated.ProductCategory,
		ProductPrice:      validated.Price,
		OrderQuantity:     validated.Quantity,
		UserAge:           validated.Age,
		UserGender:        validated.Gender,
		PaymentMethod:     validated.PaymentMethod,
		UserLocation:      validated.Location,
		TotalOrderValue:   totalValue,
		WillReturn:        result.WillReturn,
		ReturnProbability: result.ReturnProbability,
		ConfidenceScore:   result.ConfidenceScore,
		RiskLevel:         string(result.RiskLevel),
		ModelUsed:         string(result.ModelUsed),
		Recommendations:   out.Recommendations,
	}); err != nil {
		s.log.Warn("prediction not stored",
			zap.String("order_id", orderID), zap.Error(err))
	}
	return out
}

func (s *Service) recommendations(riskLevel string, totalValue float64) []string {
	cfg := s.rules.Get()
	for _, rule := range cfg.Recommendations {
		if rule.RiskLevel != riskLevel {
			continue
		}
		out := append([]string(nil), rule.Messages...)
		if rule.HighValueAbove > 0 && totalValue > rule.HighValueAbove && rule.HighValueExtra != "" {
			out = append(out, rule.HighValueExtra)
		}
		return out
	}
	return nil
}

func (s *Service) orderID(raw domain.RawOrder) string {
	if raw.OrderID != "" {
		return raw.OrderID
	}
	return fmt.Sprintf("ORD-%s", s.genID.Generate())
}

func featureView(fs features.FeatureSet) map[string]any {
	out := make(map[string]any, len(fs))
	for k, v := range fs {
		out[k] = v
	}
	return out
}
