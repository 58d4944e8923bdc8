// Package worker drives the enrichment pipeline from the job queue: it
// pulls a video:process task, runs the current stage, and either
// re-enqueues the job for its next stage or marks it complete/failed
// (spec.md §4.4, §4.5, §9 "stage as a function returning a Result").
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/0ui-labs/youtube-bookmarks/internal/apperr"
	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
	"github.com/0ui-labs/youtube-bookmarks/internal/enrichment"
	"github.com/0ui-labs/youtube-bookmarks/internal/jobqueue"
	"github.com/0ui-labs/youtube-bookmarks/internal/metrics"
	"github.com/0ui-labs/youtube-bookmarks/internal/progressbus"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

// Pipeline is the subset of enrichment.Pipeline the handler needs,
// declared here so tests can substitute a fake stage table.
type Pipeline interface {
	Stage(current models.Stage) (enrichment.Stage, bool)
}

// Enqueuer is the subset of jobqueue.Client the handler needs to
// self-chain a job onto its next stage.
type Enqueuer interface {
	EnqueueVideoProcess(ctx context.Context, videoJob *models.VideoJob) error
}

// Publisher is the subset of internal/progressbus.Bus the handler needs to
// emit a progress tick after every stage transition (spec.md §4.6, §4.7).
type Publisher interface {
	Publish(ctx context.Context, event *models.ProgressEvent) error
}

var _ Pipeline = (*enrichment.Pipeline)(nil)
var _ Enqueuer = (*jobqueue.Client)(nil)
var _ Publisher = (*progressbus.Bus)(nil)

// Handler implements asynq's handler signature for jobqueue.TypeVideoProcess.
type Handler struct {
	pipeline    Pipeline
	videos      repository.VideoRepository
	enrichments repository.EnrichmentRepository
	jobs        repository.JobRepository
	lists       repository.ListRepository
	queue       Enqueuer
	publisher   Publisher
	maxRetries  int
}

// NewHandler builds the task handler. maxRetries bounds how many times a
// transient stage failure is retried before the job is moved to the
// terminal error stage (spec.md §6's `R`, default 3).
func NewHandler(pipeline Pipeline, videos repository.VideoRepository, enrichments repository.EnrichmentRepository, jobs repository.JobRepository, lists repository.ListRepository, queue Enqueuer, publisher Publisher, maxRetries int) *Handler {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Handler{
		pipeline:    pipeline,
		videos:      videos,
		enrichments: enrichments,
		jobs:        jobs,
		lists:       lists,
		queue:       queue,
		publisher:   publisher,
		maxRetries:  maxRetries,
	}
}

// stageProgressPercent maps a pipeline stage to the percent-complete value
// carried on its ProgressEvent (spec.md §4.6). Stages advance in a fixed
// total order (internal/db/models.Stage.Less), so this is a flat table
// rather than anything computed from job state.
func stageProgressPercent(s models.Stage) int {
	switch s {
	case models.StageCreated:
		return 0
	case models.StageMetadata:
		return 25
	case models.StageCaptions:
		return 50
	case models.StageChapters:
		return 75
	case models.StageComplete, models.StageError:
		return 100
	default:
		return 0
	}
}

// publishProgress resolves the video's owning user and emits a tick for its
// job's current stage. Resolution and publish failures are logged and
// swallowed: a missed progress event never blocks the pipeline, since the
// job row itself remains the source of truth (spec.md §4.6).
func (h *Handler) publishProgress(ctx context.Context, video *models.Video, stage models.Stage, message *string) {
	list, err := h.lists.GetByID(ctx, video.ListID)
	if err != nil {
		logger.Log.Warn("failed to resolve list for progress event", zap.String("video_id", video.ID.String()), zap.Error(err))
		return
	}
	event := models.NewProgressEvent(video.ID, list.UserID, stage, stageProgressPercent(stage), message)
	if err := h.publisher.Publish(ctx, event); err != nil {
		logger.Log.Warn("failed to publish progress event", zap.String("video_id", video.ID.String()), zap.Error(err))
	}
}

// ProcessTask implements asynq.HandlerFunc.
func (h *Handler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := jobqueue.UnmarshalVideoProcessPayload(task.Payload())
	if err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	videoJobID, err := uuid.Parse(payload.VideoJobID)
	if err != nil {
		return fmt.Errorf("invalid video job id %q: %w", payload.VideoJobID, err)
	}
	videoID, err := uuid.Parse(payload.VideoID)
	if err != nil {
		return fmt.Errorf("invalid video id %q: %w", payload.VideoID, err)
	}

	job, err := h.jobs.GetVideoJobByID(ctx, videoJobID)
	if err != nil {
		return fmt.Errorf("load video job %s: %w", videoJobID, err)
	}

	// A list/video deleted mid-run sets Canceled; honor it at every
	// suspension point rather than burning another stage's work.
	if job.Canceled {
		logger.Log.Info("video job canceled, skipping", zap.String("video_job_id", job.ID.String()))
		return nil
	}

	stageFn, ok := h.pipeline.Stage(job.Stage)
	if !ok {
		// Already complete or errored: a redelivered task is a no-op.
		return nil
	}

	video, err := h.videos.GetByID(ctx, videoID)
	if err != nil {
		return fmt.Errorf("load video %s: %w", videoID, err)
	}

	enr, err := h.enrichments.GetByVideoID(ctx, videoID)
	if err != nil {
		if !db.IsNotFound(err) {
			return fmt.Errorf("load enrichment for video %s: %w", videoID, err)
		}
		enr = models.NewEnrichment(videoID)
		if err := h.enrichments.Create(ctx, enr); err != nil {
			return fmt.Errorf("create enrichment for video %s: %w", videoID, err)
		}
	}

	job.Status = models.JobStatusProcessing

	stopTimer := metrics.RecordStageStart()
	next, stageErr := stageFn(ctx, &enrichment.StageInput{Video: video, Enrichment: enr})
	stopTimer(string(job.Stage))
	if stageErr != nil {
		if appErr, ok := apperr.As(stageErr); ok {
			return h.fail(ctx, job, video, enr, appErr)
		}

		job.Attempts++
		if job.Attempts >= h.maxRetries {
			reason := stageFailureReason(job.Stage)
			return h.fail(ctx, job, video, enr, apperr.WithDetails(apperr.KindEnrichmentFailed,
				stageErr.Error(), map[string]interface{}{"reason": reason}))
		}

		msg := stageErr.Error()
		job.LastError = &msg
		job.UpdatedAt = time.Now()
		if err := h.jobs.UpdateVideoJob(ctx, job); err != nil {
			logger.Log.Warn("failed to persist retry state", zap.String("video_job_id", job.ID.String()), zap.Error(err))
		}
		return stageErr
	}

	if err := h.videos.Update(ctx, video); err != nil {
		return fmt.Errorf("persist video %s: %w", videoID, err)
	}
	if err := h.enrichments.Update(ctx, enr); err != nil {
		return fmt.Errorf("persist enrichment for video %s: %w", videoID, err)
	}

	job.Stage = next
	job.Attempts = 0
	job.LastError = nil
	job.UpdatedAt = time.Now()

	if next == models.StageComplete {
		job.Status = models.JobStatusCompleted
		if err := h.jobs.UpdateVideoJob(ctx, job); err != nil {
			return fmt.Errorf("persist completed job %s: %w", job.ID, err)
		}
		h.publishProgress(ctx, video, next, nil)
		logger.Log.Info("video enrichment complete",
			zap.String("video_job_id", job.ID.String()), zap.String("status", string(enr.Status)))
		return nil
	}

	job.Status = models.JobStatusPending
	if err := h.jobs.UpdateVideoJob(ctx, job); err != nil {
		return fmt.Errorf("persist job %s: %w", job.ID, err)
	}
	h.publishProgress(ctx, video, next, nil)
	if err := h.queue.EnqueueVideoProcess(ctx, job); err != nil {
		return fmt.Errorf("enqueue next stage for job %s: %w", job.ID, err)
	}
	return nil
}

// fail moves a job to its terminal error stage. It always returns nil:
// the job is done retrying, so asynq should not attempt it again.
func (h *Handler) fail(ctx context.Context, job *models.VideoJob, video *models.Video, enr *models.Enrichment, cause *apperr.Error) error {
	msg := cause.Error()

	job.Stage = models.StageError
	job.Status = models.JobStatusFailed
	job.LastError = &msg
	job.UpdatedAt = time.Now()

	enr.Status = models.EnrichmentFailed
	enr.ErrorMessage = &msg

	video.MarkFailed(msg)

	if err := h.videos.Update(ctx, video); err != nil {
		logger.Log.Warn("failed to persist failed video", zap.String("video_id", video.ID.String()), zap.Error(err))
	}
	if err := h.enrichments.Update(ctx, enr); err != nil {
		logger.Log.Warn("failed to persist failed enrichment", zap.String("video_id", video.ID.String()), zap.Error(err))
	}
	if err := h.jobs.UpdateVideoJob(ctx, job); err != nil {
		logger.Log.Warn("failed to persist failed job", zap.String("video_job_id", job.ID.String()), zap.Error(err))
	}
	h.publishProgress(ctx, video, models.StageError, &msg)

	logger.Log.Warn("video enrichment failed",
		zap.String("video_job_id", job.ID.String()), zap.String("video_id", video.ID.String()), zap.Error(cause))
	return nil
}

// stageFailureReason names the sub-reason surfaced on Enrichment.ErrorMessage
// once a stage exhausts its retries. Only the metadata stage (run while the
// job sits at StageCreated) is fatal on retry exhaustion; captions and
// chapters degrade instead of erroring (spec.md §4.5).
func stageFailureReason(stage models.Stage) string {
	if stage == models.StageCreated {
		return "metadata_failed"
	}
	return "enrichment_failed"
}
