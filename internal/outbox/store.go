package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists jobs in Postgres.
type Store interface {
	Enqueue(ctx context.Context, job Job) (bool, error)
	ClaimDue(ctx context.Context, limit int) ([]Job, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	Fail(ctx context.Context, job Job, cause string) error
}

const maxAttempts = 8

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Store backed by the outbox_jobs table.
func NewPostgres(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

// Enqueue inserts the job unless its dedup key is already present. Returns
// false when the key collided, which callers treat as "already scheduled".
func (s *postgresStore) Enqueue(ctx context.Context, job Job) (bool, error) {
	const q = `
INSERT INTO outbox_jobs (id, kind, dedup_key, payload, status, attempts, next_run_at)
VALUES ($1, $2, $3, $4, 'pending', 0, $5)
ON CONFLICT (dedup_key) DO NOTHING
`
	tag, err := s.pool.Exec(ctx, q, job.ID, job.Kind, job.DedupKey, job.Payload, job.NextRunAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ClaimDue atomically moves up to limit due jobs to running and returns them.
// SKIP LOCKED keeps concurrent dispatchers from double-claiming.
func (s *postgresStore) ClaimDue(ctx context.Context, limit int) ([]Job, error) {
	const q = `
UPDATE outbox_jobs
SET status = 'running', updated_at = now()
WHERE id IN (
    SELECT id FROM outbox_jobs
    WHERE status = 'pending' AND next_run_at <= now()
    ORDER BY next_run_at
    LIMIT $1
    FOR UPDATE SKIP LOCKED
)
RETURNING id, kind, dedup_key, payload, status, attempts, next_run_at, last_error
`
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.Kind, &job.DedupKey, &job.Payload, &job.Status, &job.Attempts, &job.NextRunAt, &job.LastError); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *postgresStore) MarkDone(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE outbox_jobs SET status = 'done', updated_at = now() WHERE id = $1`
	_, err := s.pool.Exec(ctx, q, id)
	return err
}

// Fail records the attempt and either reschedules the job with backoff or
// parks it as dead once the attempt budget is spent.
func (s *postgresStore) Fail(ctx context.Context, job Job, cause string) error {
	attempts := job.Attempts + 1
	status := StatusPending
	nextRun := time.Now().UTC().Add(RetryDelay(attempts))
	if attempts >= maxAttempts {
		status = StatusDead
	}
	const q = `
UPDATE outbox_jobs
SET status = $2, attempts = $3, next_run_at = $4, last_error = $5, updated_at = now()
WHERE id = $1
`
	_, err := s.pool.Exec(ctx, q, job.ID, status, attempts, nextRun, cause)
	return err
}

// RetryDelay returns the exponential backoff before the given attempt number
// runs again, capped at an hour.
func RetryDelay(attempts int) time.Duration {
	delay := 30 * time.Second
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= time.Hour {
			return time.Hour
		}
	}
	return delay
}
