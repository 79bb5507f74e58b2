package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	analyticsdomain "github.com/smallbiznis/returnsight/internal/analytics/domain"
	batchdomain "github.com/smallbiznis/returnsight/internal/batch/domain"
	"github.com/smallbiznis/returnsight/internal/config"
	modelservice "github.com/smallbiznis/returnsight/internal/model/service"
	"github.com/smallbiznis/returnsight/internal/observability"
	obsmiddleware "github.com/smallbiznis/returnsight/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/returnsight/internal/observability/metrics"
	obstracing "github.com/smallbiznis/returnsight/internal/observability/tracing"
	orderdomain "github.com/smallbiznis/returnsight/internal/order/domain"
	"github.com/smallbiznis/returnsight/internal/ratelimit"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	orders         orderdomain.Service
	model          *modelservice.Engine
	batch          batchdomain.Service
	analytics      analyticsdomain.Service
	predictLimiter *ratelimit.PredictLimiter
	obsMetrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Orders         orderdomain.Service
	Model          *modelservice.Engine
	Batch          batchdomain.Service
	Analytics      analyticsdomain.Service
	PredictLimiter *ratelimit.PredictLimiter `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics       `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		orders:         p.Orders,
		model:          p.Model,
		batch:          p.Batch,
		analytics:      p.Analytics,
		predictLimiter: p.PredictLimiter,
		obsMetrics:     p.ObsMetrics,
	}

	svc.registerRootRoutes()
	svc.registerPredictRoutes()
	svc.registerOrderRoutes()
	svc.registerBatchRoutes()
	svc.registerAnalyticsRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRootRoutes() {
	s.engine.GET("/", s.Index)
	s.engine.GET("/health", s.Health)
}

func (s *Server) registerPredictRoutes() {
	predict := s.engine.Group("/predict")

	predict.POST("/single", s.PredictRateLimit(), s.PredictSingle)
	predict.POST("/batch", s.PredictRateLimit(), s.PredictInlineBatch)
	predict.GET("/health", s.PredictHealth)
	predict.GET("/model-info", s.ModelInfo)
	predict.GET("/example", s.PredictExample)
}

func (s *Server) registerOrderRoutes() {
	orders := s.engine.Group("/orders")

	orders.POST("/process", s.PredictRateLimit(), s.ProcessOrder)
	orders.POST("/batch-process", s.PredictRateLimit(), s.ProcessOrderBatch)
	orders.GET("/validation-rules", s.ValidationRules)
	orders.GET("/stats", s.OrderStats)
}

func (s *Server) registerBatchRoutes() {
	batch := s.engine.Group("/batch")

	batch.POST("/upload", s.UploadBatch)
	batch.GET("/jobs", s.ListBatchJobs)
	batch.GET("/jobs/:id", s.BatchJobStatus)
	batch.GET("/jobs/:id/results", s.BatchJobResults)
}

func (s *Server) registerAnalyticsRoutes() {
	analytics := s.engine.Group("/analytics")

	analytics.GET("/dashboard", s.AnalyticsDashboard)
	analytics.GET("/recent-predictions", s.RecentPredictions)
	analytics.GET("/revenue-impact", s.RevenueImpact)
	analytics.GET("/trends", s.AnalyticsTrends)
	analytics.GET("/kpis", s.AnalyticsKPIs)
}

func (s *Server) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": s.cfg.AppName,
		"version": s.cfg.AppVersion,
		"endpoints": gin.H{
			"predict":   []string{"/predict/single", "/predict/batch", "/predict/health", "/predict/model-info", "/predict/example"},
			"orders":    []string{"/orders/process", "/orders/batch-process", "/orders/validation-rules", "/orders/stats"},
			"batch":     []string{"/batch/upload", "/batch/jobs", "/batch/jobs/:id", "/batch/jobs/:id/results"},
			"analytics": []string{"/analytics/dashboard", "/analytics/recent-predictions", "/analytics/revenue-impact", "/analytics/trends", "/analytics/kpis"},
		},
	})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": s.cfg.AppName,
		"version": s.cfg.AppVersion,
	})
}
