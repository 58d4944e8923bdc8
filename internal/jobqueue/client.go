package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

// Client wraps an asynq.Client and records the enqueue against a VideoJob
// row, so a job's asynq_task_id is always resolvable for cancellation and
// status lookups (spec.md §4.3).
type Client struct {
	asynqClient *asynq.Client
	jobs        repository.JobRepository
}

func NewClient(redisAddr string, jobs repository.JobRepository) (*Client, error) {
	redisOpt, err := ParseRedisURL(redisAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &Client{
		asynqClient: asynq.NewClient(redisOpt),
		jobs:        jobs,
	}, nil
}

func (c *Client) Close() error {
	return c.asynqClient.Close()
}

// EnqueueVideoProcess enqueues a video:process task for the VideoJob's
// current stage (a new job, the next stage, or a retry) and stamps the
// returned asynq task id onto the row.
func (c *Client) EnqueueVideoProcess(ctx context.Context, videoJob *models.VideoJob) error {
	payload, err := NewVideoProcessPayload(videoJob.ID.String(), videoJob.VideoID.String())
	if err != nil {
		return fmt.Errorf("failed to create task payload: %w", err)
	}

	payloadBytes, err := payload.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeVideoProcess, payloadBytes)

	info, err := c.asynqClient.Enqueue(task,
		asynq.MaxRetry(5),
		asynq.Timeout(5*time.Minute),
		asynq.Queue("default"),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	videoJob.AsynqTaskID = &info.ID
	if err := c.jobs.UpdateVideoJob(ctx, videoJob); err != nil {
		logger.Log.Warn("failed to stamp asynq task id on video job",
			zap.String("video_job_id", videoJob.ID.String()), zap.Error(err))
	}

	logger.Log.Info("enqueued video process task",
		zap.String("video_job_id", videoJob.ID.String()),
		zap.String("video_id", videoJob.VideoID.String()),
		zap.String("task_id", info.ID))
	return nil
}
