package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ListFilter narrows the stored-prediction listing. Zero values mean
// "no constraint".
type ListFilter struct {
	RiskLevel   string
	WillReturn  *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, p *Prediction) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Prediction, error)
	Aggregate(ctx context.Context, db *gorm.DB, since time.Time) (Aggregate, error)
	RiskDistribution(ctx context.Context, db *gorm.DB, since time.Time) ([]RiskCount, error)
	DailyCounts(ctx context.Context, db *gorm.DB, since time.Time) ([]DailyCount, error)
}
