package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/returnsight/internal/prediction/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *domain.Prediction) error {
	return db.WithContext(ctx).Create(p).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Prediction, error) {
	var out []*domain.Prediction
	stmt := db.WithContext(ctx).Model(&domain.Prediction{})
	if filter.RiskLevel != "" {
		stmt = stmt.Where("risk_level = ?", filter.RiskLevel)
	}
	if filter.WillReturn != nil {
		stmt = stmt.Where("will_return = ?", *filter.WillReturn)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}
	err := stmt.Order("created_at desc, id desc").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) Aggregate(ctx context.Context, db *gorm.DB, since time.Time) (domain.Aggregate, error) {
	var agg domain.Aggregate
	err := db.WithContext(ctx).
		Model(&domain.Prediction{}).
		Select(`count(*) as total,
			coalesce(sum(case when will_return then 1 else 0 end), 0) as returns,
			coalesce(avg(return_probability), 0) as avg_probability,
			coalesce(avg(confidence_score), 0) as avg_confidence,
			coalesce(sum(total_order_value), 0) as total_order_value,
			coalesce(sum(case when will_return then total_order_value else 0 end), 0) as return_value`).
		Where("created_at >= ?", since).
		Scan(&agg).Error
	return agg, err
}

func (r *repo) RiskDistribution(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.RiskCount, error) {
	var rows []domain.RiskCount
	err := db.WithContext(ctx).
		Model(&domain.Prediction{}).
		Select("risk_level, count(*) as count").
		Where("created_at >= ?", since).
		Group("risk_level").
		Order("risk_level").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) DailyCounts(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.DailyCount, error) {
	var rows []domain.DailyCount
	err := db.WithContext(ctx).
		Model(&domain.Prediction{}).
		Select(`date(created_at) as day,
			count(*) as total,
			coalesce(sum(case when will_return then 1 else 0 end), 0) as returns,
			coalesce(avg(return_probability), 0) as avg_risk,
			coalesce(sum(total_order_value), 0) as order_value,
			coalesce(sum(case when will_return then total_order_value else 0 end), 0) as return_value`).
		Where("created_at >= ?", since).
		Group("date(created_at)").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
