package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateJob inserts a pending crawl job.
func (q *Queries) CreateJob(ctx context.Context, job *CrawlJob) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO crawl_jobs (id, land_id, job_type, status, parameters, channel)
		VALUES (?, ?, ?, ?, ?, ?)`,
		job.ID, job.LandID, job.JobType, JobPending, job.Parameters, job.Channel)
	if err != nil {
		return fmt.Errorf("create job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob fetches a job by id.
func (q *Queries) GetJob(ctx context.Context, id string) (*CrawlJob, error) {
	var j CrawlJob
	var startedAt, completedAt sql.NullTime
	err := q.db.QueryRowContext(ctx, `
		SELECT id, land_id, job_type, status, parameters, result_data, error_message,
		       channel, created_at, started_at, completed_at
		FROM crawl_jobs WHERE id = ?`, id).Scan(
		&j.ID, &j.LandID, &j.JobType, &j.Status, &j.Parameters, &j.ResultData,
		&j.ErrorMessage, &j.Channel, &j.CreatedAt, &startedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	j.StartedAt = timePtr(startedAt)
	j.CompletedAt = timePtr(completedAt)
	return &j, nil
}

// MarkJobRunning transitions pending → running and stamps started_at.
// Returns false when the job was not pending (already started or cancelled).
func (q *Queries) MarkJobRunning(ctx context.Context, id string) (bool, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE crawl_jobs SET status = ?, started_at = ?
		WHERE id = ? AND status = ?`,
		JobRunning, time.Now().UTC(), id, JobPending)
	if err != nil {
		return false, fmt.Errorf("mark job running: %w", err)
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// FinishJob transitions running → completed|failed with a result payload or
// error message and stamps completed_at.
func (q *Queries) FinishJob(ctx context.Context, id, status string, resultData, errorMessage *string) error {
	if status != JobCompleted && status != JobFailed {
		return fmt.Errorf("invalid terminal status %q", status)
	}
	_, err := q.db.ExecContext(ctx, `
		UPDATE crawl_jobs SET status = ?, result_data = ?, error_message = ?, completed_at = ?
		WHERE id = ? AND status = ?`,
		status, resultData, errorMessage, time.Now().UTC(), id, JobRunning)
	if err != nil {
		return fmt.Errorf("finish job %s: %w", id, err)
	}
	return nil
}

// CancelJob transitions a pending or running job to cancelled. The crawl
// engine honors cancellation at the next expression boundary.
func (q *Queries) CancelJob(ctx context.Context, id string) (bool, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE crawl_jobs SET status = ?, completed_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		JobCancelled, time.Now().UTC(), id, JobPending, JobRunning)
	if err != nil {
		return false, fmt.Errorf("cancel job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// JobStatus returns just the status column, for cheap cancellation polling.
func (q *Queries) JobStatus(ctx context.Context, id string) (string, error) {
	var status string
	err := q.db.QueryRowContext(ctx,
		`SELECT status FROM crawl_jobs WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return status, err
}
