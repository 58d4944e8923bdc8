package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// EnrichmentRepository defines operations for managing per-video enrichment
// records, one-to-one with Video (spec.md §3, §4.5).
type EnrichmentRepository interface {
	Create(ctx context.Context, e *models.Enrichment) error
	Update(ctx context.Context, e *models.Enrichment) error
	GetByVideoID(ctx context.Context, videoID uuid.UUID) (*models.Enrichment, error)
	GetBatchByVideoIDs(ctx context.Context, videoIDs []uuid.UUID) (map[uuid.UUID]*models.Enrichment, error)
}

type enrichmentRepository struct {
	pool *pgxpool.Pool
}

func NewEnrichmentRepository(pool *pgxpool.Pool) EnrichmentRepository {
	return &enrichmentRepository{pool: pool}
}

const enrichmentColumns = `id, video_id, captions_vtt, transcript, caption_source,
	chapters, chapter_source, status, progress_message, retry_count, error_message`

func (r *enrichmentRepository) Create(ctx context.Context, e *models.Enrichment) error {
	chaptersJSON, err := json.Marshal(e.Chapters)
	if err != nil {
		return db.WrapError(err, "marshal chapters")
	}

	query := `INSERT INTO enrichments (` + enrichmentColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err = r.pool.Exec(ctx, query,
		e.ID, e.VideoID, e.CaptionsVTT, e.Transcript, e.CaptionSource,
		chaptersJSON, e.ChapterSource, e.Status, e.ProgressMsg, e.RetryCount, e.ErrorMessage,
	)
	if err != nil {
		return db.WrapError(err, "create enrichment")
	}
	return nil
}

func (r *enrichmentRepository) Update(ctx context.Context, e *models.Enrichment) error {
	chaptersJSON, err := json.Marshal(e.Chapters)
	if err != nil {
		return db.WrapError(err, "marshal chapters")
	}

	query := `
		UPDATE enrichments SET
			captions_vtt=$2, transcript=$3, caption_source=$4,
			chapters=$5, chapter_source=$6, status=$7,
			progress_message=$8, retry_count=$9, error_message=$10
		WHERE video_id=$1
	`
	result, err := r.pool.Exec(ctx, query,
		e.VideoID, e.CaptionsVTT, e.Transcript, e.CaptionSource,
		chaptersJSON, e.ChapterSource, e.Status, e.ProgressMsg, e.RetryCount, e.ErrorMessage,
	)
	if err != nil {
		return db.WrapError(err, "update enrichment")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "update enrichment")
	}
	return nil
}

func (r *enrichmentRepository) GetByVideoID(ctx context.Context, videoID uuid.UUID) (*models.Enrichment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+enrichmentColumns+` FROM enrichments WHERE video_id=$1`, videoID)
	return scanEnrichment(row)
}

func (r *enrichmentRepository) GetBatchByVideoIDs(ctx context.Context, videoIDs []uuid.UUID) (map[uuid.UUID]*models.Enrichment, error) {
	if len(videoIDs) == 0 {
		return make(map[uuid.UUID]*models.Enrichment), nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+enrichmentColumns+` FROM enrichments WHERE video_id = ANY($1)`, videoIDs)
	if err != nil {
		return nil, db.WrapError(err, "get batch enrichments")
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*models.Enrichment)
	for rows.Next() {
		e, err := scanEnrichment(rows)
		if err != nil {
			return nil, err
		}
		out[e.VideoID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate enrichments")
	}
	return out, nil
}

func scanEnrichment(row rowScanner) (*models.Enrichment, error) {
	e := &models.Enrichment{}
	var chaptersJSON []byte
	err := row.Scan(
		&e.ID, &e.VideoID, &e.CaptionsVTT, &e.Transcript, &e.CaptionSource,
		&chaptersJSON, &e.ChapterSource, &e.Status, &e.ProgressMsg, &e.RetryCount, &e.ErrorMessage,
	)
	if err != nil {
		return nil, db.WrapError(err, "scan enrichment")
	}
	if len(chaptersJSON) > 0 {
		if err := json.Unmarshal(chaptersJSON, &e.Chapters); err != nil {
			return nil, db.WrapError(err, "unmarshal chapters")
		}
	}
	return e, nil
}
