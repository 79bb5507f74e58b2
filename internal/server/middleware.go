package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/returnsight/internal/observability/logger"
	"go.uber.org/zap"
)

// PredictRateLimit applies the per-client redis token bucket to the
// prediction endpoints. Keyed on client IP. With no limiter configured,
// or with redis unreachable, requests pass.
func (s *Server) PredictRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.predictLimiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := c.FullPath()

		res, err := s.predictLimiter.Allow(ctx, c.ClientIP())
		if err != nil {
			logger.FromContext(ctx).Warn("predict rate limit check failed",
				zap.String("endpoint", endpoint), zap.Error(err))
		}
		if res.Allowed {
			s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint)
			c.Next()
			return
		}

		s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, "client-rate")
		retryAfter := int(res.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
			Type:    "rate_limited",
			Message: "too many prediction requests",
		}})
	}
}
