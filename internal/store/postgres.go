package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS promethee_runs (
	run_id       UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	operation    TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'pending',
	requester    TEXT NOT NULL DEFAULT '',
	problem      JSONB NOT NULL,
	result       JSONB,
	error        TEXT,
	problems     TEXT[],
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	started_at   TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS promethee_runs_status_created_idx ON promethee_runs (status, created_at);
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the runs table when it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const runColumns = `run_id, operation, status, requester, problem,
	result, error, problems,
	created_at, started_at, completed_at, updated_at`

func (s *PostgresStore) CreateRun(ctx context.Context, run *Run) error {
	if run.Status == "" {
		run.Status = StatusPending
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO promethee_runs (operation, status, requester, problem)
		VALUES ($1, $2, $3, $4)
		RETURNING run_id, created_at, updated_at`,
		run.Operation, run.Status, run.Requester, []byte(run.Problem),
	).Scan(&run.ID, &run.CreatedAt, &run.UpdatedAt)
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	run, err := scanRun(s.pool.QueryRow(ctx, `
		SELECT `+runColumns+`
		FROM promethee_runs WHERE run_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM promethee_runs WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}
	if filter.Operation != "" {
		n++
		query += fmt.Sprintf(" AND operation = $%d", n)
		args = append(args, filter.Operation)
	}
	if filter.Requester != "" {
		n++
		query += fmt.Sprintf(" AND requester = $%d", n)
		args = append(args, filter.Requester)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run *Run) error {
	var resultJSON []byte
	if run.Result != nil {
		resultJSON, _ = json.Marshal(run.Result)
	}
	err := s.pool.QueryRow(ctx, `
		UPDATE promethee_runs SET
			status = $2, result = $3, error = $4, problems = $5,
			started_at = $6, completed_at = $7, updated_at = now()
		WHERE run_id = $1
		RETURNING updated_at`,
		run.ID, run.Status, resultJSON, run.Error, run.Problems,
		run.StartedAt, run.CompletedAt,
	).Scan(&run.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRunNotFound
	}
	return err
}

func (s *PostgresStore) TransitionRun(ctx context.Context, run *Run, from RunStatus) error {
	var resultJSON []byte
	if run.Result != nil {
		resultJSON, _ = json.Marshal(run.Result)
	}
	err := s.pool.QueryRow(ctx, `
		UPDATE promethee_runs SET
			status = $2, result = $3, error = $4, problems = $5,
			started_at = $6, completed_at = $7, updated_at = now()
		WHERE run_id = $1 AND status = $8
		RETURNING updated_at`,
		run.ID, run.Status, resultJSON, run.Error, run.Problems,
		run.StartedAt, run.CompletedAt, from,
	).Scan(&run.UpdatedAt)
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var current RunStatus
	err = s.pool.QueryRow(ctx, `SELECT status FROM promethee_runs WHERE run_id = $1`, run.ID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRunNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: run %s is %s, expected %s", ErrStatusChanged, run.ID, current, from)
}

// ClaimPendingRuns uses SKIP LOCKED so several instances can share the table.
func (s *PostgresStore) ClaimPendingRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := s.pool.Query(ctx, `
		UPDATE promethee_runs SET status = 'running', started_at = now(), updated_at = now()
		WHERE run_id IN (
			SELECT run_id FROM promethee_runs
			WHERE status = 'pending'
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+runColumns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (s *PostgresStore) GetStaleRuns(ctx context.Context, before time.Time) ([]*Run, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+runColumns+`
		FROM promethee_runs WHERE status = 'running' AND started_at < $1
		ORDER BY started_at ASC`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (s *PostgresStore) GetStats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'running' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(EXTRACT(EPOCH FROM (completed_at - started_at)) * 1000) FILTER (WHERE status = 'completed' AND completed_at IS NOT NULL AND started_at IS NOT NULL), 0)
		FROM promethee_runs`,
	).Scan(&stats.TotalPending, &stats.TotalRunning, &stats.TotalCompleted, &stats.TotalFailed, &stats.AvgDurationMs)
	return stats, err
}

func scanRun(row pgx.Row) (*Run, error) {
	r := &Run{}
	var problemJSON, resultJSON []byte
	var runError sql.NullString
	if err := row.Scan(
		&r.ID, &r.Operation, &r.Status, &r.Requester, &problemJSON,
		&resultJSON, &runError, &r.Problems,
		&r.CreatedAt, &r.StartedAt, &r.CompletedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	r.Problem = problemJSON
	if runError.Valid {
		r.Error = runError.String
	}
	if resultJSON != nil {
		_ = json.Unmarshal(resultJSON, &r.Result)
	}
	return r, nil
}

func scanRuns(rows pgx.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
