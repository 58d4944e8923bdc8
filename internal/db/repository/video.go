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

// VideoFilters contains filter options for listing a list's videos.
type VideoFilters struct {
	Limit  int
	Offset int
	Status models.ProcessingStatus
}

// VideoRepository defines operations for managing videos (spec.md §3).
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	Update(ctx context.Context, video *models.Video) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	GetByCanonicalID(ctx context.Context, listID uuid.UUID, canonicalID string) (*models.Video, error)
	ListByListID(ctx context.Context, listID uuid.UUID, filters VideoFilters) ([]*models.Video, int, error)
}

type videoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) VideoRepository {
	return &videoRepository{pool: pool}
}

const videoColumns = `id, list_id, canonical_youtube_id, title, channel, thumbnail_url,
	duration_seconds, published_at, processing_status, failure_reason,
	watch_position, created_at, updated_at`

func (r *videoRepository) Create(ctx context.Context, v *models.Video) error {
	query := `
		INSERT INTO videos (` + videoColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`
	_, err := r.pool.Exec(ctx, query,
		v.ID, v.ListID, v.CanonicalID, v.Title, v.Channel, v.ThumbnailURL,
		v.DurationSeconds, v.PublishedAt, v.ProcessingStatus, v.FailureReason,
		v.WatchPosition, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return db.WrapError(err, "create video")
	}
	return nil
}

func (r *videoRepository) Update(ctx context.Context, v *models.Video) error {
	query := `
		UPDATE videos SET
			title=$2, channel=$3, thumbnail_url=$4, duration_seconds=$5,
			published_at=$6, processing_status=$7, failure_reason=$8,
			watch_position=$9, updated_at=$10
		WHERE id=$1
	`
	result, err := r.pool.Exec(ctx, query,
		v.ID, v.Title, v.Channel, v.ThumbnailURL, v.DurationSeconds,
		v.PublishedAt, v.ProcessingStatus, v.FailureReason, v.WatchPosition, v.UpdatedAt,
	)
	if err != nil {
		return db.WrapError(err, "update video")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "update video")
	}
	return nil
}

func (r *videoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id=$1`, id)
	if err != nil {
		return db.WrapError(err, "delete video")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "delete video")
	}
	return nil
}

func (r *videoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id=$1`, id)
	return scanVideo(row)
}

func (r *videoRepository) GetByCanonicalID(ctx context.Context, listID uuid.UUID, canonicalID string) (*models.Video, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE list_id=$1 AND canonical_youtube_id=$2`,
		listID, canonicalID)
	return scanVideo(row)
}

func (r *videoRepository) ListByListID(ctx context.Context, listID uuid.UUID, filters VideoFilters) ([]*models.Video, int, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	where := "WHERE list_id=$1"
	args := []interface{}{listID}
	if filters.Status != "" {
		where += " AND processing_status=$2"
		args = append(args, filters.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)::int FROM videos "+where, args...).Scan(&total); err != nil {
		return nil, 0, db.WrapError(err, "count videos")
	}

	query := fmt.Sprintf(`SELECT %s FROM videos %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		videoColumns, where, filters.Limit, filters.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.WrapError(err, "list videos")
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		v, err := scanVideoRow(rows)
		if err != nil {
			return nil, 0, err
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.WrapError(err, "iterate videos")
	}
	return videos, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVideo(row rowScanner) (*models.Video, error) {
	v := &models.Video{}
	err := row.Scan(
		&v.ID, &v.ListID, &v.CanonicalID, &v.Title, &v.Channel, &v.ThumbnailURL,
		&v.DurationSeconds, &v.PublishedAt, &v.ProcessingStatus, &v.FailureReason,
		&v.WatchPosition, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "scan video")
	}
	return v, nil
}

func scanVideoRow(rows pgx.Rows) (*models.Video, error) {
	return scanVideo(rows)
}
