package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/smallbiznis/returnsight/internal/batch/domain"
	"github.com/smallbiznis/returnsight/internal/clock"
	"github.com/smallbiznis/returnsight/internal/config"
	orderdomain "github.com/smallbiznis/returnsight/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ordersStub answers PredictBatch deterministically: positive-price rows
// succeed, price above 150 is HIGH risk. gate, when set, blocks the
// worker until released so tests can observe a running job.
type ordersStub struct {
	gate chan struct{}
}

func (s *ordersStub) Process(ctx context.Context, raw orderdomain.RawOrder) orderdomain.OrderResult {
	return orderdomain.OrderResult{}
}

func (s *ordersStub) ProcessBatch(ctx context.Context, raws []orderdomain.RawOrder) orderdomain.BatchResult {
	return orderdomain.BatchResult{}
}

func (s *ordersStub) Predict(ctx context.Context, raw orderdomain.RawOrder) orderdomain.OrderResult {
	return orderdomain.OrderResult{}
}

func (s *ordersStub) PredictBatch(ctx context.Context, raws []orderdomain.RawOrder) orderdomain.BatchResult {
	if s.gate != nil {
		<-s.gate
	}
	batch := orderdomain.BatchResult{BatchSize: len(raws)}
	for _, raw := range raws {
		result := orderdomain.OrderResult{OrderID: raw.OrderID, Success: raw.Price > 0}
		if result.Success {
			result.RiskLevel = "LOW"
			if raw.Price > 150 {
				result.RiskLevel = "HIGH"
			}
		} else {
			result.Error = "invalid price"
		}
		batch.Results = append(batch.Results, result)
	}
	return batch
}

func (s *ordersStub) Stats() orderdomain.Stats { return orderdomain.Stats{} }

func newManager(t *testing.T, orders orderdomain.Service, maxRows int) *Manager {
	t.Helper()
	m := New(Params{
		Config: config.Config{BatchMaxUpload: maxRows},
		Log:    zap.NewNop(),
		Clock:  clock.NewFakeClock(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)),
		Orders: orders,
	})
	t.Cleanup(m.Close)
	return m
}

const sampleCSV = `order_id,product_price,order_quantity,product_category,user_gender,payment_method,user_age,user_location,discount_applied
ORD-1,250.00,1,Electronics,Female,Credit Card,22,Urban,10
ORD-2,40.00,2,Books,Male,PayPal,50,Rural,
ORD-3,not-a-price,1,Books,Male,PayPal,50,Rural,
`

func waitFinished(t *testing.T, m *Manager, id string) domain.Job {
	t.Helper()
	var job domain.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = m.Status(id)
		require.NoError(t, err)
		return job.Status == domain.StatusCompleted || job.Status == domain.StatusFailed
	}, 5*time.Second, 5*time.Millisecond)
	return job
}

func TestSubmitAndComplete(t *testing.T) {
	m := newManager(t, &ordersStub{}, 0)

	job, err := m.Submit(context.Background(), "orders.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, 3, job.TotalRows)

	done := waitFinished(t, m, job.ID)
	assert.Equal(t, domain.StatusCompleted, done.Status)
	assert.Equal(t, 2, done.Processed)
	assert.Equal(t, 1, done.Failed)
	assert.InDelta(t, 100, done.Percentage, 1e-9)

	results, err := m.Results(job.ID)
	require.NoError(t, err)
	require.Len(t, results.Results, 3)
	assert.Equal(t, 1, results.Summary.HighRisk)
	assert.Equal(t, 1, results.Summary.LowRisk)
	assert.InDelta(t, 2.0/3.0, results.Summary.SuccessRate, 1e-9)

	// The unparsable row is reported in place with its line number.
	var parseFailure string
	for _, r := range results.Results {
		if !r.Success {
			parseFailure = r.Error
		}
	}
	assert.Contains(t, parseFailure, "line 4")
}

func TestSubmitRejectsEmptyAndHeaderOnly(t *testing.T) {
	m := newManager(t, &ordersStub{}, 0)

	_, err := m.Submit(context.Background(), "empty.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrEmptyUpload)

	_, err = m.Submit(context.Background(), "header.csv",
		strings.NewReader("price,quantity,category,gender,payment_method,age,location\n"))
	assert.ErrorIs(t, err, domain.ErrEmptyUpload)
}

func TestSubmitRejectsMissingColumns(t *testing.T) {
	m := newManager(t, &ordersStub{}, 0)

	_, err := m.Submit(context.Background(), "bad.csv",
		strings.NewReader("price,quantity\n10,1\n"))
	require.ErrorIs(t, err, domain.ErrMissingColumns)
	assert.Contains(t, err.Error(), "gender")
}

func TestSubmitRejectsOversizedUpload(t *testing.T) {
	m := newManager(t, &ordersStub{}, 2)

	_, err := m.Submit(context.Background(), "orders.csv", strings.NewReader(sampleCSV))
	assert.ErrorIs(t, err, domain.ErrUploadTooLarge)
}

func TestResultsUnavailableWhileRunning(t *testing.T) {
	gate := make(chan struct{})
	m := newManager(t, &ordersStub{gate: gate}, 0)

	job, err := m.Submit(context.Background(), "orders.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := m.Status(job.ID)
		require.NoError(t, err)
		return status.Status == domain.StatusRunning
	}, 5*time.Second, 5*time.Millisecond)

	_, err = m.Results(job.ID)
	assert.ErrorIs(t, err, domain.ErrJobNotFinished)

	close(gate)
	waitFinished(t, m, job.ID)
	_, err = m.Results(job.ID)
	assert.NoError(t, err)
}

func TestUnknownJob(t *testing.T) {
	m := newManager(t, &ordersStub{}, 0)

	_, err := m.Status("nope")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
	_, err = m.Results("nope")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestListNewestFirst(t *testing.T) {
	m := newManager(t, &ordersStub{}, 0)

	first, err := m.Submit(context.Background(), "a.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	second, err := m.Submit(context.Background(), "b.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	waitFinished(t, m, first.ID)
	waitFinished(t, m, second.ID)

	jobs := m.List()
	require.Len(t, jobs, 2)
	// Same fake-clock timestamp, so the tie-break on id applies.
	assert.ElementsMatch(t, []string{first.ID, second.ID}, []string{jobs[0].ID, jobs[1].ID})
}
