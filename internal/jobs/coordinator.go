package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/landscout/landscout/internal/store"
)

// Coordinator drives the job state machine over the store and broadcasts
// progress. States: pending → running → {completed, failed, cancelled}.
type Coordinator struct {
	store       *store.Store
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewCoordinator builds a coordinator; broadcaster may be a
// MemoryBroadcaster when Redis is disabled.
func NewCoordinator(st *store.Store, broadcaster Broadcaster, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:       st,
		broadcaster: broadcaster,
		logger:      logger.With("component", "jobs"),
	}
}

// Create registers a pending job and returns it with its channel name.
func (c *Coordinator) Create(ctx context.Context, landID int64, jobType string, parameters *string) (*store.CrawlJob, error) {
	job := &store.CrawlJob{
		ID:         uuid.NewString(),
		LandID:     landID,
		JobType:    jobType,
		Parameters: parameters,
	}
	job.Channel = ChannelFor(job.ID)
	if err := c.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	c.logger.Info("job created", "job_id", job.ID, "type", jobType, "land_id", landID)
	return c.store.GetJob(ctx, job.ID)
}

// Start transitions pending → running. Returns an error when the job was
// already started or cancelled.
func (c *Coordinator) Start(ctx context.Context, jobID string) error {
	ok, err := c.store.MarkJobRunning(ctx, jobID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("job %s is not pending", jobID)
	}
	return nil
}

// Complete transitions running → completed with a result payload.
func (c *Coordinator) Complete(ctx context.Context, jobID string, resultData *string) error {
	if err := c.store.FinishJob(ctx, jobID, store.JobCompleted, resultData, nil); err != nil {
		return err
	}
	c.logger.Info("job completed", "job_id", jobID)
	return nil
}

// Fail transitions running → failed with an error message.
func (c *Coordinator) Fail(ctx context.Context, jobID string, message string) error {
	if err := c.store.FinishJob(ctx, jobID, store.JobFailed, nil, &message); err != nil {
		return err
	}
	c.logger.Warn("job failed", "job_id", jobID, "error", message)
	return nil
}

// Cancel requests cancellation. The engine honors it at the next
// expression boundary.
func (c *Coordinator) Cancel(ctx context.Context, jobID string) error {
	ok, err := c.store.CancelJob(ctx, jobID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("job %s is not pending or running", jobID)
	}
	c.logger.Info("job cancelled", "job_id", jobID)
	return nil
}

// IsCancelled reports whether a job reached the cancelled state; the engine
// polls it between expressions.
func (c *Coordinator) IsCancelled(ctx context.Context, jobID string) bool {
	status, err := c.store.JobStatus(ctx, jobID)
	if err != nil {
		c.logger.Warn("job status poll failed", "job_id", jobID, "error", err)
		return false
	}
	return status == store.JobCancelled
}

// Progress publishes a progress event on the job's channel. Broadcast
// failures are logged, never propagated.
func (c *Coordinator) Progress(ctx context.Context, job *store.CrawlJob, current, total int, message string, completed bool) {
	event := &ProgressEvent{
		TaskID:    job.ID,
		LandID:    job.LandID,
		JobID:     job.ID,
		Current:   current,
		Total:     total,
		Message:   message,
		Completed: completed,
	}
	if total > 0 {
		event.Percentage = float64(current) / float64(total) * 100
	}
	if err := c.broadcaster.Publish(ctx, job.Channel, event); err != nil {
		c.logger.Warn("progress publish failed", "job_id", job.ID, "error", err)
	}
}
