// Package runner executes problem documents, either synchronously or as
// persisted runs picked up by a background loop.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Promethee/internal/config"
	"github.com/MikeSquared-Agency/Promethee/internal/document"
	"github.com/MikeSquared-Agency/Promethee/internal/hermes"
	"github.com/MikeSquared-Agency/Promethee/internal/metrics"
	"github.com/MikeSquared-Agency/Promethee/internal/store"
)

const statsInterval = 30 * time.Second

type Runner struct {
	store   store.Store
	hermes  hermes.Client
	exec    *Executor
	metrics *metrics.Metrics
	cfg     *config.Config
	logger  *slog.Logger
	now     func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New builds a runner. h and m may be nil.
func New(s store.Store, h hermes.Client, exec *Executor, m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		store:   s,
		hermes:  h,
		exec:    exec,
		metrics: m,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
}

func (r *Runner) Start(ctx context.Context) {
	r.wg.Add(2)
	go r.runLoop(ctx)
	go r.staleLoop(ctx)
}

func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

// Execute runs op synchronously and records metrics for it.
func (r *Runner) Execute(ctx context.Context, op Operation, p *document.Problem) (Result, error) {
	start := r.now()
	res, err := r.exec.Execute(ctx, op, p)
	elapsed := r.now().Sub(start)
	r.metrics.ObserveRun(string(op), elapsed, err, IsInvalid(err))
	if err != nil {
		r.logger.Info("operation failed", "operation", op, "duration_ms", elapsed.Milliseconds(), "error", err)
		return nil, err
	}
	r.logger.Debug("operation completed", "operation", op, "duration_ms", elapsed.Milliseconds())
	return res, nil
}

// Submit stores a pending run for op. The document is decoded first so
// malformed submissions are rejected up front; it is stored as JSON.
func (r *Runner) Submit(ctx context.Context, op Operation, requester string, data []byte) (*store.Run, error) {
	p, err := document.Decode(data)
	if err != nil {
		return nil, err
	}
	normalised, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode problem: %w", err)
	}

	run := &store.Run{
		Operation: string(op),
		Status:    store.StatusPending,
		Requester: requester,
		Problem:   normalised,
	}
	if err := r.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	r.logger.Info("run submitted", "run_id", run.ID, "operation", op, "requester", requester)
	r.publish(hermes.SubjectRunSubmitted(run.ID.String()), hermes.RunSubmittedEvent{
		RunID:     run.ID.String(),
		Operation: run.Operation,
		Requester: requester,
	})
	return run, nil
}

func (r *Runner) runLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.processPendingRuns(ctx)
		}
	}
}

func (r *Runner) processPendingRuns(ctx context.Context) {
	runs, err := r.store.ClaimPendingRuns(ctx, r.cfg.Engine.BatchSize)
	if err != nil {
		r.logger.Error("failed to claim pending runs", "error", err)
		return
	}
	if len(runs) == 0 {
		return
	}

	r.logger.Info("processing pending runs", "count", len(runs))
	for i, run := range runs {
		if r.stopping(ctx) {
			r.release(ctx, runs[i:])
			return
		}
		r.process(ctx, run)
	}
}

func (r *Runner) stopping(ctx context.Context) bool {
	select {
	case <-r.stopCh:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// release puts claimed runs back to pending so another tick or instance
// picks them up. It writes with a context that outlives ctx.
func (r *Runner) release(ctx context.Context, runs []*store.Run) {
	persist := context.WithoutCancel(ctx)
	for _, run := range runs {
		run.Status = store.StatusPending
		run.StartedAt = nil
		run.CompletedAt = nil
		run.Error = ""
		run.Problems = nil
		run.Result = nil
		if err := r.store.TransitionRun(persist, run, store.StatusRunning); err != nil {
			r.logger.Error("failed to release run", "run_id", run.ID, "error", err)
			continue
		}
		r.logger.Info("run released", "run_id", run.ID, "operation", run.Operation)
	}
}

func (r *Runner) process(ctx context.Context, run *store.Run) {
	id := run.ID.String()
	r.publish(hermes.SubjectRunStarted(id), hermes.RunStartedEvent{RunID: id, Operation: run.Operation})

	res, err := r.executeRun(ctx, run)
	if err != nil && ctx.Err() != nil {
		r.release(ctx, []*store.Run{run})
		return
	}

	completed := r.now()
	run.CompletedAt = &completed
	if err != nil {
		run.Status = store.StatusFailed
		run.Error = err.Error()
		run.Problems = Problems(err)
	} else {
		run.Status = store.StatusCompleted
		run.Result = map[string]interface{}(res)
	}

	if err := r.store.TransitionRun(context.WithoutCancel(ctx), run, store.StatusRunning); err != nil {
		if errors.Is(err, store.ErrStatusChanged) {
			r.logger.Warn("run finished after leaving running status, result dropped", "run_id", id, "error", err)
			return
		}
		r.logger.Error("failed to persist run", "run_id", id, "error", err)
		return
	}

	if run.Status == store.StatusFailed {
		r.logger.Warn("run failed", "run_id", id, "operation", run.Operation, "error", run.Error)
		r.publish(hermes.SubjectRunFailed(id), hermes.RunFailedEvent{
			RunID:     id,
			Operation: run.Operation,
			Error:     run.Error,
			Problems:  run.Problems,
		})
		return
	}

	r.logger.Info("run completed", "run_id", id, "operation", run.Operation, "duration_ms", run.Duration().Milliseconds())
	r.publish(hermes.SubjectRunCompleted(id), hermes.RunCompletedEvent{
		RunID:      id,
		Operation:  run.Operation,
		DurationMs: run.Duration().Milliseconds(),
	})
}

func (r *Runner) executeRun(ctx context.Context, run *store.Run) (Result, error) {
	op, err := ParseOperation(run.Operation)
	if err != nil {
		return nil, err
	}
	p, err := document.Decode(run.Problem)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, op, p)
}

func (r *Runner) staleLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.checkStaleRuns(ctx)
			r.publishStats(ctx)
		}
	}
}

// checkStaleRuns fails runs that have been running longer than the stale
// run timeout, typically because the instance executing them went away.
func (r *Runner) checkStaleRuns(ctx context.Context) {
	timeout := r.cfg.StaleRunTimeout()
	runs, err := r.store.GetStaleRuns(ctx, r.now().Add(-timeout))
	if err != nil {
		r.logger.Error("failed to get stale runs", "error", err)
		return
	}

	for _, run := range runs {
		id := run.ID.String()
		completed := r.now()
		run.Status = store.StatusFailed
		run.CompletedAt = &completed
		run.Error = fmt.Sprintf("run exceeded stale timeout of %s", timeout)
		if err := r.store.TransitionRun(ctx, run, store.StatusRunning); err != nil {
			if errors.Is(err, store.ErrStatusChanged) {
				continue
			}
			r.logger.Error("failed to fail stale run", "run_id", id, "error", err)
			continue
		}
		if r.metrics != nil {
			r.metrics.StaleRuns.Inc()
		}
		r.logger.Warn("stale run failed", "run_id", id, "operation", run.Operation)
		r.publish(hermes.SubjectRunFailed(id), hermes.RunFailedEvent{
			RunID:     id,
			Operation: run.Operation,
			Error:     run.Error,
			Stale:     true,
		})
	}
}

func (r *Runner) publishStats(ctx context.Context) {
	stats, err := r.store.GetStats(ctx)
	if err != nil {
		r.logger.Error("failed to get run stats", "error", err)
		return
	}
	if r.metrics != nil {
		r.metrics.PendingRuns.Set(float64(stats.TotalPending))
	}
	r.publish(hermes.SubjectEngineStats, hermes.StatsEvent{
		Pending:   stats.TotalPending,
		Running:   stats.TotalRunning,
		Completed: stats.TotalCompleted,
		Failed:    stats.TotalFailed,
		AvgMs:     stats.AvgDurationMs,
		Timestamp: r.now(),
	})
}

func (r *Runner) publish(subject string, event any) {
	if r.hermes == nil {
		return
	}
	if err := r.hermes.Publish(subject, event); err != nil {
		r.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
