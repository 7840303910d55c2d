package kafka

import (
	"time"

	"github.com/patlytics/patscope/internal/domain/quality"
)

// EventType discriminates run event payloads.
type EventType string

const (
	EventRunCompleted EventType = "run.completed"
	EventRunFailed    EventType = "run.failed"
)

// RunEvent is the wire payload for a finished pipeline run.
type RunEvent struct {
	Type       EventType      `json:"type"`
	RunID      string         `json:"run_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Counts     quality.Counts `json:"counts"`
	Score      int            `json:"score"`
	Error      string         `json:"error,omitempty"`
}
