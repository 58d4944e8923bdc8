package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// DefaultHistorySize is the per-video ring cap `N` applied when a
// repository is constructed with a non-positive size (spec.md §6, default
// 200).
const DefaultHistorySize = 200

// ProgressEventRepository defines operations for the append-only progress
// history backing Progress Transport replay (spec.md §4.6, §4.7). History is
// appended before any pub/sub publish, so a reconnecting client never misses
// an event the live transport already delivered.
type ProgressEventRepository interface {
	Append(ctx context.Context, event *models.ProgressEvent) error
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time, videoIDs []uuid.UUID) ([]*models.ProgressEvent, error)
	ListByVideoID(ctx context.Context, videoID uuid.UUID, limit int) ([]*models.ProgressEvent, error)
}

type progressEventRepository struct {
	pool        *pgxpool.Pool
	historySize int
}

// NewProgressEventRepository builds a repository backed by a per-video ring
// of at most historySize rows (spec.md §4.6 "capped ring, e.g. last
// N=200"). A non-positive historySize falls back to DefaultHistorySize.
func NewProgressEventRepository(pool *pgxpool.Pool, historySize int) ProgressEventRepository {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &progressEventRepository{pool: pool, historySize: historySize}
}

const progressEventColumns = `id, video_id, user_id, stage, progress, message, created_at`

// Append inserts event, then trims the video's ring back down to
// historySize rows, oldest first, in the same round trip (SPEC_FULL §4.6
// supplement). The trim runs on every insert rather than periodically: the
// ring never grows unbounded even under a burst of events for one video.
func (r *progressEventRepository) Append(ctx context.Context, event *models.ProgressEvent) error {
	insert := `INSERT INTO job_progress_events (` + progressEventColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	trim := `
		DELETE FROM job_progress_events
		WHERE video_id = $1
		AND id NOT IN (
			SELECT id FROM job_progress_events
			WHERE video_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		)
	`

	var batch pgx.Batch
	batch.Queue(insert, event.ID, event.VideoID, event.UserID, event.Stage, event.Progress, event.Message, event.Timestamp)
	batch.Queue(trim, event.VideoID, r.historySize)

	results := r.pool.SendBatch(ctx, &batch)
	defer results.Close()

	if _, err := results.Exec(); err != nil {
		return db.WrapError(err, "append progress event")
	}
	if _, err := results.Exec(); err != nil {
		return db.WrapError(err, "trim progress event ring")
	}
	return nil
}

func (r *progressEventRepository) ListSince(ctx context.Context, userID uuid.UUID, since time.Time, videoIDs []uuid.UUID) ([]*models.ProgressEvent, error) {
	var rows pgxRows
	var err error
	if len(videoIDs) > 0 {
		query := `
			SELECT ` + progressEventColumns + `
			FROM job_progress_events
			WHERE user_id=$1 AND created_at > $2 AND video_id = ANY($3)
			ORDER BY created_at ASC
		`
		rows, err = r.pool.Query(ctx, query, userID, since, videoIDs)
	} else {
		query := `
			SELECT ` + progressEventColumns + `
			FROM job_progress_events
			WHERE user_id=$1 AND created_at > $2
			ORDER BY created_at ASC
		`
		rows, err = r.pool.Query(ctx, query, userID, since)
	}
	if err != nil {
		return nil, db.WrapError(err, "list progress events since")
	}
	defer rows.Close()
	return scanProgressEvents(rows)
}

func (r *progressEventRepository) ListByVideoID(ctx context.Context, videoID uuid.UUID, limit int) ([]*models.ProgressEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + progressEventColumns + `
		FROM job_progress_events
		WHERE video_id=$1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, videoID, limit)
	if err != nil {
		return nil, db.WrapError(err, "list progress events by video")
	}
	defer rows.Close()
	return scanProgressEvents(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close()
}

func scanProgressEvents(rows pgxRows) ([]*models.ProgressEvent, error) {
	var events []*models.ProgressEvent
	for rows.Next() {
		e := &models.ProgressEvent{}
		err := rows.Scan(&e.ID, &e.VideoID, &e.UserID, &e.Stage, &e.Progress, &e.Message, &e.Timestamp)
		if err != nil {
			return nil, db.WrapError(err, "scan progress event")
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate progress events")
	}
	return events, nil
}
