// Package run defines the pipeline run record: the persisted trace of one
// dataset-build-and-score execution, kept in the tool-owned database schema.
package run

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/patlytics/patscope/internal/domain/quality"
)

// Status of a pipeline run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is one pipeline execution.  The filter fields snapshot the
// configuration the run was started with, so a stored run is reproducible
// even after the config file changes.
type Record struct {
	ID         uuid.UUID  `json:"id"`
	Status     Status     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	Keywords      []string `json:"keywords"`
	ClassPrefixes []string `json:"class_prefixes"`
	Combine       string   `json:"combine"`
	YearFrom      int      `json:"year_from,omitempty"`
	YearTo        int      `json:"year_to,omitempty"`

	Counts quality.Counts `json:"counts"`
	Score  int            `json:"score"`

	// Error carries the failure message for StatusFailed runs.
	Error string `json:"error,omitempty"`
}

// Duration returns the elapsed run time, zero while the run is in flight.
func (r *Record) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Repository persists run records.
type Repository interface {
	// Create inserts the record in its initial (running) state.
	Create(ctx context.Context, rec *Record) error

	// Finish updates status, finish time, counts, score and error message.
	Finish(ctx context.Context, rec *Record) error

	// Get loads one run by id.  A missing id yields CodeRunNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Record, error)

	// List returns the most recent runs, newest first; limit ≤ 0 means a
	// sensible default.
	List(ctx context.Context, limit int) ([]*Record, error)
}
