package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	analyticsservice "github.com/smallbiznis/returnsight/internal/analytics/service"
	batchservice "github.com/smallbiznis/returnsight/internal/batch/service"
	"github.com/smallbiznis/returnsight/internal/clock"
	"github.com/smallbiznis/returnsight/internal/config"
	modelservice "github.com/smallbiznis/returnsight/internal/model/service"
	orderservice "github.com/smallbiznis/returnsight/internal/order/service"
	predictiondomain "github.com/smallbiznis/returnsight/internal/prediction/domain"
	predictionrepo "github.com/smallbiznis/returnsight/internal/prediction/repository"
	predictionservice "github.com/smallbiznis/returnsight/internal/prediction/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		AppName:        "returnsight",
		AppVersion:     "test",
		ModelsDir:      t.TempDir(),
		BatchMaxInline: 100,
		BatchMaxUpload: 1000,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&predictiondomain.Prediction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	rules := &config.RulesHolder{}
	rules.Store(config.DefaultRulesConfig())

	engine := modelservice.New(modelservice.Params{
		Config: cfg,
		Rules:  rules,
		Log:    log,
		Clock:  clk,
	})
	predictions := predictionservice.New(predictionservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  predictionrepo.Provide(),
	})
	orders := orderservice.New(orderservice.Params{
		Log:         log,
		Clock:       clk,
		GenID:       node,
		Engine:      engine,
		Rules:       rules,
		Predictions: predictions,
	})
	batch := batchservice.New(batchservice.Params{
		Config: cfg,
		Log:    log,
		Clock:  clk,
		Orders: orders,
	})
	t.Cleanup(batch.Close)
	analytics := analyticsservice.New(analyticsservice.Params{
		Log:         log,
		Clock:       clk,
		Predictions: predictions,
	})

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())

	return NewServer(ServerParams{
		Gin:       router,
		Cfg:       cfg,
		Orders:    orders,
		Model:     engine,
		Batch:     batch,
		Analytics: analytics,
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func highRiskOrder() map[string]any {
	return map[string]any{
		"price":            250.0,
		"quantity":         1,
		"product_category": "Electronics",
		"gender":           "Female",
		"payment_method":   "Credit Card",
		"age":              22,
		"location":         "Urban",
	}
}

func TestIndexAndHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "returnsight", decode(t, rec)["service"])

	rec = doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestPredictSingle(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodPost, "/predict/single", highRiskOrder())
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "HIGH", body["risk_level"])
	assert.Equal(t, true, body["will_return"])
	assert.NotEmpty(t, body["order_id"])
}

func TestPredictSingleValidationFailure(t *testing.T) {
	s := newTestServer(t, nil)

	order := highRiskOrder()
	order["price"] = 0.0
	rec := doJSON(t, s, http.MethodPost, "/predict/single", order)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "price")
}

func TestPredictSingleMalformedJSON(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/predict/single", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictAcceptsTeenagerOrdersRejectedByProcess(t *testing.T) {
	s := newTestServer(t, nil)

	order := highRiskOrder()
	order["age"] = 16

	rec := doJSON(t, s, http.MethodPost, "/predict/single", order)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/orders/process", order)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictInlineBatch(t *testing.T) {
	s := newTestServer(t, nil)

	low := highRiskOrder()
	low["price"] = 40.0
	low["age"] = 50

	rec := doJSON(t, s, http.MethodPost, "/predict/batch", map[string]any{
		"orders": []map[string]any{highRiskOrder(), low},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, float64(2), body["batch_size"])
	assert.Equal(t, float64(2), body["successful_count"])
}

func TestPredictInlineBatchEmpty(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodPost, "/predict/batch", map[string]any{"orders": []map[string]any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictInlineBatchOverLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.BatchMaxInline = 1
	})

	rec := doJSON(t, s, http.MethodPost, "/predict/batch", map[string]any{
		"orders": []map[string]any{highRiskOrder(), highRiskOrder()},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictHealthAndModelInfo(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/predict/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = doJSON(t, s, http.MethodGet, "/predict/model-info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "models_directory")

	rec = doJSON(t, s, http.MethodGet, "/predict/example", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "example_request")
}

func TestProcessOrderBatchOverLimit(t *testing.T) {
	s := newTestServer(t, nil)

	orders := make([]map[string]any, maxProcessBatch+1)
	for i := range orders {
		orders[i] = highRiskOrder()
	}
	rec := doJSON(t, s, http.MethodPost, "/orders/batch-process", map[string]any{"orders": orders})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidationRulesAndStats(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/orders/validation-rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Male")
	assert.Contains(t, rec.Body.String(), "payment_method")

	doJSON(t, s, http.MethodPost, "/orders/process", highRiskOrder())
	rec = doJSON(t, s, http.MethodGet, "/orders/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["total_processed"])
}

const uploadCSV = `order_id,product_price,order_quantity,product_category,user_gender,payment_method,user_age,user_location
ORD-1,250.00,1,Electronics,Female,Credit Card,22,Urban
ORD-2,40.00,2,Books,Male,PayPal,50,Rural
`

func uploadFile(t *testing.T, s *Server, name, contents string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/batch/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestBatchUploadLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	rec := uploadFile(t, s, "orders.csv", uploadCSV)
	require.Equal(t, http.StatusAccepted, rec.Code)

	job := decode(t, rec)
	id, _ := job["job_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, float64(2), job["total_rows"])

	require.Eventually(t, func() bool {
		rec := doJSON(t, s, http.MethodGet, "/batch/jobs/"+id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		return decode(t, rec)["status"] == "completed"
	}, 5*time.Second, 10*time.Millisecond)

	rec = doJSON(t, s, http.MethodGet, "/batch/jobs/"+id+"/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode(t, rec)
	assert.Len(t, results["results"], 2)

	rec = doJSON(t, s, http.MethodGet, "/batch/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])
}

func TestBatchUploadRejectsEmptyFile(t *testing.T) {
	s := newTestServer(t, nil)

	rec := uploadFile(t, s, "orders.csv", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchJobNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/batch/jobs/no-such-job", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyticsEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodPost, "/orders/process", highRiskOrder())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/analytics/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dashboard := decode(t, rec)
	assert.Equal(t, float64(1), dashboard["total_predictions"])
	assert.Equal(t, float64(1), dashboard["predicted_returns"])

	rec = doJSON(t, s, http.MethodGet, "/analytics/recent-predictions?risk_level=HIGH", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])

	rec = doJSON(t, s, http.MethodGet, "/analytics/recent-predictions?risk_level=LOW", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["count"])

	rec = doJSON(t, s, http.MethodGet, "/analytics/revenue-impact", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(250), decode(t, rec)["value_at_risk"])

	rec = doJSON(t, s, http.MethodGet, "/analytics/trends", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])

	rec = doJSON(t, s, http.MethodGet, "/analytics/kpis?days=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	kpis := decode(t, rec)
	assert.Equal(t, float64(7), kpis["window_days"])
	assert.Equal(t, float64(1), kpis["prediction_volume"])
}
