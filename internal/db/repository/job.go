package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// VideoJobFilters contains filters for listing a job's video sub-jobs.
type VideoJobFilters struct {
	Status models.JobStatus
	Limit  int
	Offset int
}

// JobRepository defines operations for managing IngestionJobs and their
// per-video VideoJob sub-jobs (spec.md §4.3).
type JobRepository interface {
	CreateIngestionJob(ctx context.Context, job *models.IngestionJob) error
	GetIngestionJobByID(ctx context.Context, id uuid.UUID) (*models.IngestionJob, error)

	CreateVideoJob(ctx context.Context, job *models.VideoJob) error
	UpdateVideoJob(ctx context.Context, job *models.VideoJob) error
	GetVideoJobByID(ctx context.Context, id uuid.UUID) (*models.VideoJob, error)
	GetVideoJobByAsynqTaskID(ctx context.Context, taskID string) (*models.VideoJob, error)
	GetVideoJobByVideoID(ctx context.Context, videoID uuid.UUID) (*models.VideoJob, error)
	ListVideoJobsByJobID(ctx context.Context, jobID uuid.UUID, filters VideoJobFilters) ([]*models.VideoJob, int, error)
	CancelVideoJob(ctx context.Context, id uuid.UUID) error
}

type jobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

const ingestionJobColumns = `id, list_id, total_submitted, total_accepted, total_rejected, created_at`

func (r *jobRepository) CreateIngestionJob(ctx context.Context, job *models.IngestionJob) error {
	query := `INSERT INTO ingestion_jobs (` + ingestionJobColumns + `) VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.pool.Exec(ctx, query,
		job.ID, job.ListID, job.TotalSubmitted, job.TotalAccepted, job.TotalRejected, job.CreatedAt,
	)
	if err != nil {
		return db.WrapError(err, "create ingestion job")
	}
	return nil
}

func (r *jobRepository) GetIngestionJobByID(ctx context.Context, id uuid.UUID) (*models.IngestionJob, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ingestionJobColumns+` FROM ingestion_jobs WHERE id=$1`, id)
	job := &models.IngestionJob{}
	err := row.Scan(&job.ID, &job.ListID, &job.TotalSubmitted, &job.TotalAccepted, &job.TotalRejected, &job.CreatedAt)
	if err != nil {
		return nil, db.WrapError(err, "get ingestion job")
	}
	return job, nil
}

const videoJobColumns = `id, job_id, video_id, status, stage, attempts, last_error,
	canceled, asynq_task_id, created_at, updated_at`

func (r *jobRepository) CreateVideoJob(ctx context.Context, job *models.VideoJob) error {
	query := `INSERT INTO video_jobs (` + videoJobColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.pool.Exec(ctx, query,
		job.ID, job.JobID, job.VideoID, job.Status, job.Stage, job.Attempts,
		job.LastError, job.Canceled, job.AsynqTaskID, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return db.WrapError(err, "create video job")
	}
	return nil
}

func (r *jobRepository) UpdateVideoJob(ctx context.Context, job *models.VideoJob) error {
	query := `
		UPDATE video_jobs SET
			status=$2, stage=$3, attempts=$4, last_error=$5,
			canceled=$6, asynq_task_id=$7, updated_at=$8
		WHERE id=$1
	`
	result, err := r.pool.Exec(ctx, query,
		job.ID, job.Status, job.Stage, job.Attempts, job.LastError,
		job.Canceled, job.AsynqTaskID, job.UpdatedAt,
	)
	if err != nil {
		return db.WrapError(err, "update video job")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "update video job")
	}
	return nil
}

func (r *jobRepository) GetVideoJobByID(ctx context.Context, id uuid.UUID) (*models.VideoJob, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+videoJobColumns+` FROM video_jobs WHERE id=$1`, id)
	return scanVideoJob(row)
}

func (r *jobRepository) GetVideoJobByAsynqTaskID(ctx context.Context, taskID string) (*models.VideoJob, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+videoJobColumns+` FROM video_jobs WHERE asynq_task_id=$1`, taskID)
	return scanVideoJob(row)
}

func (r *jobRepository) GetVideoJobByVideoID(ctx context.Context, videoID uuid.UUID) (*models.VideoJob, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+videoJobColumns+` FROM video_jobs WHERE video_id=$1 ORDER BY created_at DESC LIMIT 1`, videoID)
	return scanVideoJob(row)
}

func (r *jobRepository) ListVideoJobsByJobID(ctx context.Context, jobID uuid.UUID, filters VideoJobFilters) ([]*models.VideoJob, int, error) {
	if filters.Limit <= 0 {
		filters.Limit = 100
	}

	where := "WHERE job_id=$1"
	args := []interface{}{jobID}
	if filters.Status != "" {
		where += " AND status=$2"
		args = append(args, filters.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)::int FROM video_jobs "+where, args...).Scan(&total); err != nil {
		return nil, 0, db.WrapError(err, "count video jobs")
	}

	query := fmt.Sprintf(`SELECT %s FROM video_jobs %s ORDER BY created_at ASC LIMIT %d OFFSET %d`,
		videoJobColumns, where, filters.Limit, filters.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.WrapError(err, "list video jobs")
	}
	defer rows.Close()

	var jobs []*models.VideoJob
	for rows.Next() {
		job, err := scanVideoJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.WrapError(err, "iterate video jobs")
	}
	return jobs, total, nil
}

func (r *jobRepository) CancelVideoJob(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE video_jobs SET canceled=true, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return db.WrapError(err, "cancel video job")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "cancel video job")
	}
	return nil
}

func scanVideoJob(row rowScanner) (*models.VideoJob, error) {
	job := &models.VideoJob{}
	err := row.Scan(
		&job.ID, &job.JobID, &job.VideoID, &job.Status, &job.Stage, &job.Attempts,
		&job.LastError, &job.Canceled, &job.AsynqTaskID, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "scan video job")
	}
	return job, nil
}
