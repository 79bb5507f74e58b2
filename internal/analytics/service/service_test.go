package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/returnsight/internal/analytics/domain"
	"github.com/smallbiznis/returnsight/internal/clock"
	predictiondomain "github.com/smallbiznis/returnsight/internal/prediction/domain"
	predictionrepo "github.com/smallbiznis/returnsight/internal/prediction/repository"
	predictionservice "github.com/smallbiznis/returnsight/internal/prediction/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAnalytics(t *testing.T) (domain.Service, predictiondomain.Service) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&predictiondomain.Prediction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))

	store := predictionservice.New(predictionservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  predictionrepo.Provide(),
	})
	svc := New(Params{
		Log:         zap.NewNop(),
		Clock:       clk,
		Predictions: store,
	})
	return svc, store
}

func seed(t *testing.T, store predictiondomain.Service) {
	t.Helper()
	ctx := context.Background()
	rows := []predictiondomain.StoreRequest{
		{OrderID: "ORD-1", ProductCategory: "Electronics", TotalOrderValue: 300, ProductPrice: 300, OrderQuantity: 1, UserAge: 22, WillReturn: true, ReturnProbability: 0.8, ConfidenceScore: 0.9, RiskLevel: "HIGH", ModelUsed: "primary"},
		{OrderID: "ORD-2", ProductCategory: "Clothing", TotalOrderValue: 100, ProductPrice: 100, OrderQuantity: 1, UserAge: 40, WillReturn: true, ReturnProbability: 0.5, ConfidenceScore: 0.7, RiskLevel: "MEDIUM", ModelUsed: "primary"},
		{OrderID: "ORD-3", ProductCategory: "Books", TotalOrderValue: 50, ProductPrice: 50, OrderQuantity: 1, UserAge: 50, WillReturn: false, ReturnProbability: 0.1, ConfidenceScore: 0.95, RiskLevel: "LOW", ModelUsed: "primary"},
		{OrderID: "ORD-4", ProductCategory: "Books", TotalOrderValue: 50, ProductPrice: 50, OrderQuantity: 1, UserAge: 55, WillReturn: false, ReturnProbability: 0.1, ConfidenceScore: 0.95, RiskLevel: "LOW", ModelUsed: "primary"},
	}
	for _, r := range rows {
		require.NoError(t, store.Store(ctx, r))
	}
}

func TestDashboard(t *testing.T) {
	svc, store := newAnalytics(t)
	seed(t, store)

	dash, err := svc.Dashboard(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 30, dash.WindowDays)
	assert.Equal(t, int64(4), dash.TotalPredicted)
	assert.Equal(t, int64(2), dash.PredictedReturn)
	assert.InDelta(t, 0.5, dash.ReturnRate, 1e-9)
	assert.Equal(t, int64(2), dash.RiskBreakdown["LOW"])
	assert.InDelta(t, 400, dash.RevenueAtRisk, 1e-9)
}

func TestDashboardDefaultsBadWindow(t *testing.T) {
	svc, _ := newAnalytics(t)

	dash, err := svc.Dashboard(context.Background(), -1)
	require.NoError(t, err)
	assert.Equal(t, 30, dash.WindowDays)
}

func TestRevenueImpact(t *testing.T) {
	svc, store := newAnalytics(t)
	seed(t, store)

	impact, err := svc.RevenueImpact(context.Background(), 30)
	require.NoError(t, err)
	assert.InDelta(t, 500, impact.TotalOrderValue, 1e-9)
	assert.Equal(t, int64(2), impact.PredictedReturns)
	assert.InDelta(t, 400, impact.ValueAtRisk, 1e-9)
	assert.InDelta(t, 0.8, impact.AtRiskShare, 1e-9)
	assert.InDelta(t, 200, impact.AvgReturnValue, 1e-9)
}

func TestKPIs(t *testing.T) {
	svc, store := newAnalytics(t)
	seed(t, store)

	kpis, err := svc.KPIs(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, int64(4), kpis.PredictionVolume)
	assert.InDelta(t, 0.25, kpis.HighRiskShare, 1e-9)
	assert.InDelta(t, 400, kpis.RevenueAtRisk, 1e-9)
}

func TestTrends(t *testing.T) {
	svc, store := newAnalytics(t)
	seed(t, store)

	points, err := svc.Trends(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, int64(4), points[0].Predictions)
	assert.InDelta(t, 0.5, points[0].ReturnRate, 1e-9)
	assert.InDelta(t, 400, points[0].ValueAtRisk, 1e-9)
}

func TestRecentPassthrough(t *testing.T) {
	svc, store := newAnalytics(t)
	seed(t, store)

	items, err := svc.Recent(context.Background(), domain.RecentRequest{RiskLevel: "HIGH"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ORD-1", items[0].OrderID)
}
