package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps runs in process. It is used when no database is
// configured and in tests.
type MemoryStore struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*Run
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[uuid.UUID]*Run), now: time.Now}
}

func (s *MemoryStore) CreateRun(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.Status == "" {
		run.Status = StatusPending
	}
	run.ID = uuid.New()
	run.CreatedAt = s.now()
	run.UpdatedAt = run.CreatedAt
	s.runs[run.ID] = cloneRun(run)
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id uuid.UUID) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	return cloneRun(r), nil
}

func (s *MemoryStore) ListRuns(_ context.Context, filter RunFilter) ([]*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Run
	for _, r := range s.runs {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.Operation != "" && r.Operation != filter.Operation {
			continue
		}
		if filter.Requester != "" && r.Requester != filter.Requester {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return cloneRuns(out), nil
}

func (s *MemoryStore) UpdateRun(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.runs[run.ID]
	if !ok {
		return ErrRunNotFound
	}
	run.CreatedAt = existing.CreatedAt
	run.UpdatedAt = s.now()
	s.runs[run.ID] = cloneRun(run)
	return nil
}

func (s *MemoryStore) TransitionRun(_ context.Context, run *Run, from RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.runs[run.ID]
	if !ok {
		return ErrRunNotFound
	}
	if existing.Status != from {
		return fmt.Errorf("%w: run %s is %s, expected %s", ErrStatusChanged, run.ID, existing.Status, from)
	}
	run.CreatedAt = existing.CreatedAt
	run.UpdatedAt = s.now()
	s.runs[run.ID] = cloneRun(run)
	return nil
}

func (s *MemoryStore) ClaimPendingRuns(_ context.Context, limit int) ([]*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 1
	}
	var pending []*Run
	for _, r := range s.runs {
		if r.Status == StatusPending {
			pending = append(pending, r)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}

	now := s.now()
	for _, r := range pending {
		r.Status = StatusRunning
		started := now
		r.StartedAt = &started
		r.UpdatedAt = now
	}
	return cloneRuns(pending), nil
}

func (s *MemoryStore) GetStaleRuns(_ context.Context, before time.Time) ([]*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Run
	for _, r := range s.runs {
		if r.Status == StatusRunning && r.StartedAt != nil && r.StartedAt.Before(before) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(*out[j].StartedAt)
	})
	return cloneRuns(out), nil
}

func (s *MemoryStore) GetStats(_ context.Context) (*RunStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &RunStats{}
	var total time.Duration
	var finished int
	for _, r := range s.runs {
		switch r.Status {
		case StatusPending:
			stats.TotalPending++
		case StatusRunning:
			stats.TotalRunning++
		case StatusCompleted:
			stats.TotalCompleted++
			if d := r.Duration(); d > 0 {
				total += d
				finished++
			}
		case StatusFailed:
			stats.TotalFailed++
		}
	}
	if finished > 0 {
		stats.AvgDurationMs = float64(total.Milliseconds()) / float64(finished)
	}
	return stats, nil
}

func (s *MemoryStore) Close() error { return nil }

func cloneRuns(runs []*Run) []*Run {
	out := make([]*Run, 0, len(runs))
	for _, r := range runs {
		out = append(out, cloneRun(r))
	}
	return out
}

// cloneRun deep-copies through JSON for the result map, which the runner
// fills with nested engine output.
func cloneRun(r *Run) *Run {
	c := *r
	if r.Problem != nil {
		c.Problem = append(json.RawMessage(nil), r.Problem...)
	}
	if r.Problems != nil {
		c.Problems = append([]string(nil), r.Problems...)
	}
	if r.Result != nil {
		if data, err := json.Marshal(r.Result); err == nil {
			var m map[string]interface{}
			if json.Unmarshal(data, &m) == nil {
				c.Result = m
			}
		}
	}
	if r.StartedAt != nil {
		t := *r.StartedAt
		c.StartedAt = &t
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
