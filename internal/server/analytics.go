package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/smallbiznis/returnsight/internal/analytics/domain"
)

func (s *Server) AnalyticsDashboard(c *gin.Context) {
	dashboard, err := s.analytics.Dashboard(c.Request.Context(), intQuery(c, "days", 30))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (s *Server) RecentPredictions(c *gin.Context) {
	req := analyticsdomain.RecentRequest{
		RiskLevel:  strings.TrimSpace(c.Query("risk_level")),
		WillReturn: boolQuery(c, "will_return"),
		Limit:      intQuery(c, "limit", 50),
	}

	predictions, err := s.analytics.Recent(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

func (s *Server) RevenueImpact(c *gin.Context) {
	impact, err := s.analytics.RevenueImpact(c.Request.Context(), intQuery(c, "days", 30))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, impact)
}

func (s *Server) AnalyticsTrends(c *gin.Context) {
	trends, err := s.analytics.Trends(c.Request.Context(), intQuery(c, "days", 30))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trends": trends,
		"count":  len(trends),
	})
}

func (s *Server) AnalyticsKPIs(c *gin.Context) {
	kpis, err := s.analytics.KPIs(c.Request.Context(), intQuery(c, "days", 30))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

func intQuery(c *gin.Context, key string, def int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func boolQuery(c *gin.Context, key string) *bool {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	return &parsed
}
