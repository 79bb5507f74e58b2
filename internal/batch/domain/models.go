package domain

import (
	"context"
	"errors"
	"io"
	"time"

	orderdomain "github.com/smallbiznis/returnsight/internal/order/domain"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is the public snapshot of a background upload job. Progress
// counters advance while the worker runs; Percentage is derived.
type Job struct {
	ID          string     `json:"job_id"`
	FileName    string     `json:"file_name,omitempty"`
	Status      Status     `json:"status"`
	TotalRows   int        `json:"total_rows"`
	Processed   int        `json:"processed"`
	Failed      int        `json:"failed"`
	Percentage  float64    `json:"percentage"`
	SubmittedAt time.Time  `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Results carries the per-row outcomes of a finished job.
type Results struct {
	Job     Job                       `json:"job"`
	Results []orderdomain.OrderResult `json:"results"`
	Summary orderdomain.BatchSummary  `json:"summary"`
}

type Service interface {
	// Submit parses and validates the CSV upfront, then hands the rows to
	// a background worker. The returned job is immediately pollable.
	Submit(ctx context.Context, fileName string, r io.Reader) (Job, error)
	Status(id string) (Job, error)
	Results(id string) (Results, error)
	List() []Job
}

var (
	ErrJobNotFound    = errors.New("job_not_found")
	ErrJobNotFinished = errors.New("job_not_finished")
	ErrEmptyUpload    = errors.New("empty_upload")
	ErrUploadTooLarge = errors.New("upload_too_large")
	ErrMissingColumns = errors.New("missing_columns")
)
