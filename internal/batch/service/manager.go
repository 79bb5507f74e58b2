package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/smallbiznis/returnsight/internal/batch/domain"
	"github.com/smallbiznis/returnsight/internal/clock"
	"github.com/smallbiznis/returnsight/internal/config"
	"github.com/smallbiznis/returnsight/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/returnsight/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// chunkSize bounds how many rows go through the predictor at once.
// Progress counters advance per chunk; price and value tiers are
// relative to each chunk.
const chunkSize = 100

type Params struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	Clock   clock.Clock
	Orders  orderdomain.Service
	Metrics *metrics.Metrics `optional:"true"`
}

// Manager owns the in-memory job table and one worker goroutine per
// submitted upload. Jobs do not survive a restart.
type Manager struct {
	log     *zap.Logger
	clock   clock.Clock
	orders  orderdomain.Service
	metrics *metrics.Metrics
	maxRows int

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu   sync.RWMutex
	jobs map[string]*jobState
}

// jobState is the mutable record behind one job. The worker goroutine is
// the only writer after submit; readers take the per-job lock and copy.
type jobState struct {
	mu      sync.Mutex
	job     domain.Job
	rows    []parsedRow
	results []orderdomain.OrderResult
	summary orderdomain.BatchSummary
}

func New(p Params) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		log:     p.Log.Named("batch.manager"),
		clock:   p.Clock,
		orders:  p.Orders,
		metrics: p.Metrics,
		maxRows: p.Config.BatchMaxUpload,
		baseCtx: ctx,
		cancel:  cancel,
		jobs:    map[string]*jobState{},
	}
}

func (m *Manager) Submit(ctx context.Context, fileName string, r io.Reader) (domain.Job, error) {
	rows, err := parseCSV(r)
	if err != nil {
		return domain.Job{}, err
	}
	if m.maxRows > 0 && len(rows) > m.maxRows {
		return domain.Job{}, fmt.Errorf("%w: %d rows, limit %d", domain.ErrUploadTooLarge, len(rows), m.maxRows)
	}

	state := &jobState{
		job: domain.Job{
			ID:          uuid.NewString(),
			FileName:    fileName,
			Status:      domain.StatusPending,
			TotalRows:   len(rows),
			SubmittedAt: m.clock.Now(),
		},
		rows: rows,
	}

	m.mu.Lock()
	m.jobs[state.job.ID] = state
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(state)

	m.log.Info("batch job submitted",
		zap.String("job_id", state.job.ID),
		zap.String("file", fileName),
		zap.Int("rows", len(rows)))
	return state.snapshot(), nil
}

func (m *Manager) run(state *jobState) {
	defer m.wg.Done()

	state.mu.Lock()
	state.job.Status = domain.StatusRunning
	rows := state.rows
	state.mu.Unlock()

	// Rows that failed CSV parsing are reported as failed results
	// without reaching the predictor.
	var pending []orderdomain.RawOrder
	for _, row := range rows {
		if row.err != nil {
			state.record(orderdomain.OrderResult{
				Success:             false,
				Error:               fmt.Sprintf("line %d: %v", row.line, row.err),
				ProcessingTimestamp: m.clock.Now(),
			})
			continue
		}
		pending = append(pending, row.order)
	}

	for start := 0; start < len(pending); start += chunkSize {
		if m.baseCtx.Err() != nil {
			state.fail("shutdown before completion")
			m.metrics.RecordBatchJob(m.baseCtx, string(domain.StatusFailed))
			return
		}
		end := start + chunkSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := m.orders.PredictBatch(m.baseCtx, pending[start:end])
		for _, result := range batch.Results {
			state.record(result)
		}
	}

	state.finish(m.clock)
	snap := state.snapshot()
	m.metrics.RecordBatchJob(m.baseCtx, string(domain.StatusCompleted))
	m.metrics.RecordBatchRows(m.baseCtx, snap.Processed)
	m.log.Info("batch job finished",
		zap.String("job_id", snap.ID),
		zap.Int("processed", snap.Processed),
		zap.Int("failed", snap.Failed))
}

func (m *Manager) Status(id string) (domain.Job, error) {
	state, err := m.find(id)
	if err != nil {
		return domain.Job{}, err
	}
	return state.snapshot(), nil
}

func (m *Manager) Results(id string) (domain.Results, error) {
	state, err := m.find(id)
	if err != nil {
		return domain.Results{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.job.Status != domain.StatusCompleted && state.job.Status != domain.StatusFailed {
		return domain.Results{}, domain.ErrJobNotFinished
	}
	out := domain.Results{
		Job:     state.job,
		Results: append([]orderdomain.OrderResult(nil), state.results...),
		Summary: state.summary,
	}
	return out, nil
}

func (m *Manager) List() []domain.Job {
	m.mu.RLock()
	states := make([]*jobState, 0, len(m.jobs))
	for _, state := range m.jobs {
		states = append(states, state)
	}
	m.mu.RUnlock()

	out := make([]domain.Job, 0, len(states))
	for _, state := range states {
		out = append(out, state.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

// Close stops accepting work from running jobs and waits for the
// workers to exit.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) find(id string) (*jobState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return state, nil
}

func (s *jobState) record(result orderdomain.OrderResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	if result.Success {
		s.job.Processed++
		switch result.RiskLevel {
		case "HIGH":
			s.summary.HighRisk++
		case "MEDIUM":
			s.summary.MediumRisk++
		case "LOW":
			s.summary.LowRisk++
		}
	} else {
		s.job.Failed++
	}
	s.refreshProgress()
}

func (s *jobState) finish(clk clock.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := clk.Now()
	s.job.Status = domain.StatusCompleted
	s.job.CompletedAt = &now
	s.summary.RequiringReview = s.summary.HighRisk
	if s.job.TotalRows > 0 {
		s.summary.SuccessRate = float64(s.job.Processed) / float64(s.job.TotalRows)
	}
	s.rows = nil
	s.refreshProgress()
}

func (s *jobState) fail(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job.Status = domain.StatusFailed
	s.job.Error = reason
	s.rows = nil
}

func (s *jobState) snapshot() domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job
}

func (s *jobState) refreshProgress() {
	if s.job.TotalRows > 0 {
		s.job.Percentage = float64(s.job.Processed+s.job.Failed) / float64(s.job.TotalRows) * 100
	}
}
