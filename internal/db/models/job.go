package models

import (
	"time"

	"github.com/google/uuid"
)

// Stage is one of the enrichment pipeline states (spec.md §4.3, §4.5).
// Stages are totally ordered except on retry, which resets the job to
// StageCreated; a retried job runs every stage again and does not resume at
// the stage that failed.
type Stage string

const (
	StageCreated  Stage = "created"
	StageMetadata Stage = "metadata"
	StageCaptions Stage = "captions"
	StageChapters Stage = "chapters"
	StageComplete Stage = "complete"
	StageError    Stage = "error"
)

// stageOrder gives the total order used by invariant 6 in spec.md §8
// ("progress monotonicity"): created < metadata < captions < chapters < complete.
var stageOrder = map[Stage]int{
	StageCreated:  0,
	StageMetadata: 1,
	StageCaptions: 2,
	StageChapters: 3,
	StageComplete: 4,
}

// Less reports whether s sorts before other in the stage total order.
// Error is not comparable and always reports false for both orderings.
func (s Stage) Less(other Stage) bool {
	a, aok := stageOrder[s]
	b, bok := stageOrder[other]
	if !aok || !bok {
		return false
	}
	return a < b
}

// JobStatus is the VideoJob/IngestionJob lifecycle status.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCanceled   JobStatus = "canceled"
)

// IngestionJob is the parent record of a bulk-ingest submission (spec.md §4.3).
type IngestionJob struct {
	ID             uuid.UUID `db:"id"`
	ListID         uuid.UUID `db:"list_id"`
	TotalSubmitted int       `db:"total_submitted"`
	TotalAccepted  int       `db:"total_accepted"`
	TotalRejected  int       `db:"total_rejected"`
	CreatedAt      time.Time `db:"created_at"`
}

func NewIngestionJob(listID uuid.UUID, totalSubmitted, totalAccepted, totalRejected int) *IngestionJob {
	return &IngestionJob{
		ID:             uuid.New(),
		ListID:         listID,
		TotalSubmitted: totalSubmitted,
		TotalAccepted:  totalAccepted,
		TotalRejected:  totalRejected,
		CreatedAt:      time.Now(),
	}
}

// VideoJob is the per-video sub-job of an IngestionJob (spec.md §4.3).
type VideoJob struct {
	ID         uuid.UUID `db:"id"`
	JobID      uuid.UUID `db:"job_id"`
	VideoID    uuid.UUID `db:"video_id"`
	Status     JobStatus `db:"status"`
	Stage      Stage     `db:"stage"`
	Attempts   int       `db:"attempts"`
	LastError  *string   `db:"last_error"`
	Canceled   bool      `db:"canceled"`
	AsynqTaskID *string  `db:"asynq_task_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func NewVideoJob(jobID, videoID uuid.UUID) *VideoJob {
	now := time.Now()
	return &VideoJob{
		ID:        uuid.New(),
		JobID:     jobID,
		VideoID:   videoID,
		Status:    JobStatusPending,
		Stage:     StageCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ResetForRetry moves the job back to the given stage as pending and clears
// its last error. The retry handler passes StageCreated.
func (j *VideoJob) ResetForRetry(stage Stage) {
	j.Stage = stage
	j.Status = JobStatusPending
	j.LastError = nil
	j.UpdatedAt = time.Now()
}
