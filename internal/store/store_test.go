package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStatusValues(t *testing.T) {
	statuses := []RunStatus{StatusPending, StatusRunning, StatusCompleted, StatusFailed}
	expected := []string{"pending", "running", "completed", "failed"}
	for i, s := range statuses {
		if string(s) != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], s)
		}
	}
}

func TestRunStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() || StatusRunning.Terminal() {
		t.Error("pending and running must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("completed and failed must be terminal")
	}
}

func TestRunDuration(t *testing.T) {
	r := &Run{}
	if r.Duration() != 0 {
		t.Errorf("expected zero duration for unstarted run, got %v", r.Duration())
	}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	r.StartedAt, r.CompletedAt = &start, &end
	if r.Duration() != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %v", r.Duration())
	}
}

// clockedStore returns a MemoryStore whose clock advances one second per call.
func clockedStore() *MemoryStore {
	s := NewMemoryStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return s
}

func newRun(op, requester string) *Run {
	return &Run{Operation: op, Requester: requester, Problem: json.RawMessage(`{"alternatives":["a"]}`)}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	s := clockedStore()
	ctx := context.Background()

	run := newRun("flows", "alice")
	require.NoError(t, s.CreateRun(ctx, run))
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, StatusPending, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "flows", got.Operation)
	assert.JSONEq(t, `{"alternatives":["a"]}`, string(got.Problem))

	missing, err := s.GetRun(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := clockedStore()
	ctx := context.Background()

	run := newRun("flows", "alice")
	require.NoError(t, s.CreateRun(ctx, run))
	run.Status = StatusFailed

	got, _ := s.GetRun(ctx, run.ID)
	assert.Equal(t, StatusPending, got.Status)
}

func TestMemoryStoreClaimPendingRuns(t *testing.T) {
	s := clockedStore()
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		r := newRun("veto", "bob")
		require.NoError(t, s.CreateRun(ctx, r))
		ids = append(ids, r.ID)
	}

	claimed, err := s.ClaimPendingRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	assert.Equal(t, ids[0], claimed[0].ID)
	assert.Equal(t, ids[1], claimed[1].ID)
	for _, r := range claimed {
		assert.Equal(t, StatusRunning, r.Status)
		assert.NotNil(t, r.StartedAt)
	}

	rest, err := s.ClaimPendingRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[2], rest[0].ID)

	none, err := s.ClaimPendingRuns(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreUpdateRun(t *testing.T) {
	s := clockedStore()
	ctx := context.Background()

	run := newRun("preferences", "carol")
	require.NoError(t, s.CreateRun(ctx, run))

	now := time.Now()
	run.Status = StatusCompleted
	run.CompletedAt = &now
	run.Result = map[string]interface{}{"total": map[string]interface{}{"a": 0.5}}
	require.NoError(t, s.UpdateRun(ctx, run))

	got, _ := s.GetRun(ctx, run.ID)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, map[string]interface{}{"a": 0.5}, got.Result["total"])

	err := s.UpdateRun(ctx, &Run{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestMemoryStoreTransitionRun(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	run := &Run{Operation: "flows", Problem: []byte(`{}`)}
	require.NoError(t, s.CreateRun(ctx, run))

	run.Status = StatusCompleted
	err := s.TransitionRun(ctx, run, StatusRunning)
	assert.ErrorIs(t, err, ErrStatusChanged)
	got, _ := s.GetRun(ctx, run.ID)
	assert.Equal(t, StatusPending, got.Status)

	claimed, err := s.ClaimPendingRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	claimed[0].Status = StatusCompleted
	require.NoError(t, s.TransitionRun(ctx, claimed[0], StatusRunning))
	got, _ = s.GetRun(ctx, run.ID)
	assert.Equal(t, StatusCompleted, got.Status)

	err = s.TransitionRun(ctx, &Run{ID: uuid.New()}, StatusRunning)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestMemoryStoreListRuns(t *testing.T) {
	s := clockedStore()
	ctx := context.Background()

	for _, op := range []string{"flows", "veto", "flows"} {
		require.NoError(t, s.CreateRun(ctx, newRun(op, "dave")))
	}
	require.NoError(t, s.CreateRun(ctx, newRun("flows", "erin")))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "erin", all[0].Requester, "newest first")

	flows, _ := s.ListRuns(ctx, RunFilter{Operation: "flows", Requester: "dave"})
	assert.Len(t, flows, 2)

	pending := StatusPending
	limited, _ := s.ListRuns(ctx, RunFilter{Status: &pending, Limit: 1, Offset: 1})
	require.Len(t, limited, 1)
	assert.Equal(t, "dave", limited[0].Requester)

	past, _ := s.ListRuns(ctx, RunFilter{Offset: 10})
	assert.Empty(t, past)
}

func TestMemoryStoreStaleRunsAndStats(t *testing.T) {
	s := clockedStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateRun(ctx, newRun("flows", "frank")))
	}
	claimed, err := s.ClaimPendingRuns(ctx, 2)
	require.NoError(t, err)

	stale, err := s.GetStaleRuns(ctx, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, stale, 2)

	fresh, _ := s.GetStaleRuns(ctx, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, fresh)

	done := claimed[0]
	end := done.StartedAt.Add(200 * time.Millisecond)
	done.Status = StatusCompleted
	done.CompletedAt = &end
	require.NoError(t, s.UpdateRun(ctx, done))

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalPending)
	assert.Equal(t, 1, stats.TotalRunning)
	assert.Equal(t, 1, stats.TotalCompleted)
	assert.Equal(t, 0, stats.TotalFailed)
	assert.InDelta(t, 200, stats.AvgDurationMs, 1e-9)
}
