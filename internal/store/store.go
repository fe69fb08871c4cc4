package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRunNotFound = errors.New("run not found")
	// ErrStatusChanged is returned by TransitionRun when the stored run is
	// no longer in the expected status.
	ErrStatusChanged = errors.New("run status changed")
)

type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Terminal reports whether a run in this status will not change again.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type Run struct {
	ID        uuid.UUID `json:"run_id"`
	Operation string    `json:"operation"`
	Status    RunStatus `json:"status"`
	Requester string    `json:"requester,omitempty"`

	// Problem is the submitted document, normalised to JSON.
	Problem json.RawMessage `json:"problem,omitempty"`

	Result   map[string]interface{} `json:"result,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Problems []string               `json:"problems,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Duration is the execution time of a finished run.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(*r.StartedAt)
}

type RunFilter struct {
	Status    *RunStatus
	Operation string
	Requester string
	Limit     int
	Offset    int
}

type RunStats struct {
	TotalPending   int     `json:"total_pending"`
	TotalRunning   int     `json:"total_running"`
	TotalCompleted int     `json:"total_completed"`
	TotalFailed    int     `json:"total_failed"`
	AvgDurationMs  float64 `json:"avg_duration_ms"`
}

type Store interface {
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
	UpdateRun(ctx context.Context, run *Run) error
	// TransitionRun writes run only if the stored copy is still in status from.
	TransitionRun(ctx context.Context, run *Run, from RunStatus) error

	// ClaimPendingRuns moves up to limit of the oldest pending runs to
	// running and returns them.
	ClaimPendingRuns(ctx context.Context, limit int) ([]*Run, error)
	// GetStaleRuns returns runs that started running before the given time.
	GetStaleRuns(ctx context.Context, before time.Time) ([]*Run, error)

	GetStats(ctx context.Context) (*RunStats, error)

	Close() error
}
