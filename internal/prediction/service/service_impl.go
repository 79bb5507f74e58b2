package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/returnsight/internal/clock"
	"github.com/smallbiznis/returnsight/internal/prediction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultRecentLimit = 50

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("prediction.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Store(ctx context.Context, req domain.StoreRequest) error {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return domain.ErrInvalidOrderID
	}

	record := domain.Prediction{
		ID:                s.genID.Generate(),
		OrderID:           orderID,
		ProductCategory:   req.ProductCategory,
		ProductPrice:      req.ProductPrice,
		OrderQuantity:     req.OrderQuantity,
		UserAge:           req.UserAge,
		UserGender:        req.UserGender,
		PaymentMethod:     req.PaymentMethod,
		UserLocation:      req.UserLocation,
		TotalOrderValue:   req.TotalOrderValue,
		WillReturn:        req.WillReturn,
		ReturnProbability: req.ReturnProbability,
		ConfidenceScore:   req.ConfidenceScore,
		RiskLevel:         req.RiskLevel,
		ModelUsed:         req.ModelUsed,
		Recommendations:   datatypes.NewJSONSlice(req.Recommendations),
		CreatedAt:         s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		s.log.Error("store prediction failed",
			zap.String("order_id", orderID), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) Recent(ctx context.Context, req domain.RecentRequest) ([]domain.Prediction, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		RiskLevel:   strings.ToUpper(strings.TrimSpace(req.RiskLevel)),
		WillReturn:  req.WillReturn,
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Prediction, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (s *Service) Summarize(ctx context.Context, days int) (domain.Summary, error) {
	since, err := s.windowStart(days)
	if err != nil {
		return domain.Summary{}, err
	}

	agg, err := s.repo.Aggregate(ctx, s.db, since)
	if err != nil {
		return domain.Summary{}, err
	}
	risks, err := s.repo.RiskDistribution(ctx, s.db, since)
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{
		WindowDays:      days,
		TotalPredicted:  agg.Total,
		PredictedReturn: agg.Returns,
		AvgProbability:  agg.AvgProbability,
		AvgConfidence:   agg.AvgConfidence,
		RiskBreakdown:   map[string]int64{},
		GeneratedAt:     s.clock.Now(),
	}
	if agg.Total > 0 {
		summary.ReturnRate = float64(agg.Returns) / float64(agg.Total)
	}
	for _, rc := range risks {
		summary.RiskBreakdown[rc.RiskLevel] = rc.Count
	}
	return summary, nil
}

func (s *Service) Distribution(ctx context.Context, days int) ([]domain.RiskCount, error) {
	since, err := s.windowStart(days)
	if err != nil {
		return nil, err
	}
	return s.repo.RiskDistribution(ctx, s.db, since)
}

func (s *Service) Trends(ctx context.Context, days int) ([]domain.DailyCount, error) {
	since, err := s.windowStart(days)
	if err != nil {
		return nil, err
	}
	return s.repo.DailyCounts(ctx, s.db, since)
}

func (s *Service) Rollup(ctx context.Context, days int) (domain.Aggregate, error) {
	since, err := s.windowStart(days)
	if err != nil {
		return domain.Aggregate{}, err
	}
	return s.repo.Aggregate(ctx, s.db, since)
}

func (s *Service) windowStart(days int) (time.Time, error) {
	if days <= 0 || days > 365 {
		return time.Time{}, domain.ErrInvalidWindow
	}
	return s.clock.Now().AddDate(0, 0, -days), nil
}
