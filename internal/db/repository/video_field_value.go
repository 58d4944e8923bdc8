package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// VideoFieldValueRepository defines operations for managing typed field
// values attached to videos (spec.md §3, §4.10). Writes are upserts keyed
// on (video_id, field_id); a value with all three typed columns null is a
// clear, deleted outright rather than stored as an empty row.
type VideoFieldValueRepository interface {
	// Upsert writes a batch of field values inside a single transaction, so
	// a validation failure on any one leaves none applied (spec.md §4.10
	// "all-or-nothing").
	Upsert(ctx context.Context, values []*models.VideoFieldValue) error
	ListByVideoID(ctx context.Context, videoID uuid.UUID) ([]*models.VideoFieldValue, error)
	ListByVideoIDs(ctx context.Context, videoIDs []uuid.UUID) ([]*models.VideoFieldValue, error)
	DeleteByVideoAndFields(ctx context.Context, videoID uuid.UUID, fieldIDs []uuid.UUID) error
}

type videoFieldValueRepository struct {
	pool *pgxpool.Pool
}

func NewVideoFieldValueRepository(pool *pgxpool.Pool) VideoFieldValueRepository {
	return &videoFieldValueRepository{pool: pool}
}

const videoFieldValueColumns = `video_id, field_id, value_text, value_numeric, value_boolean, updated_at`

func (r *videoFieldValueRepository) Upsert(ctx context.Context, values []*models.VideoFieldValue) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.WrapError(err, "begin upsert field values")
	}
	defer tx.Rollback(ctx)

	for _, v := range values {
		if v.Clear() {
			_, err := tx.Exec(ctx,
				`DELETE FROM video_field_values WHERE video_id=$1 AND field_id=$2`, v.VideoID, v.FieldID)
			if err != nil {
				return db.WrapError(err, "clear field value")
			}
			continue
		}

		query := `
			INSERT INTO video_field_values (` + videoFieldValueColumns + `)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (video_id, field_id) DO UPDATE SET
				value_text=EXCLUDED.value_text,
				value_numeric=EXCLUDED.value_numeric,
				value_boolean=EXCLUDED.value_boolean,
				updated_at=EXCLUDED.updated_at
		`
		_, err := tx.Exec(ctx, query, v.VideoID, v.FieldID, v.ValueText, v.ValueNumeric, v.ValueBoolean, v.UpdatedAt)
		if err != nil {
			return db.WrapError(err, "upsert field value")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return db.WrapError(err, "commit upsert field values")
	}
	return nil
}

func (r *videoFieldValueRepository) ListByVideoID(ctx context.Context, videoID uuid.UUID) ([]*models.VideoFieldValue, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+videoFieldValueColumns+` FROM video_field_values WHERE video_id=$1`, videoID)
	if err != nil {
		return nil, db.WrapError(err, "list field values")
	}
	defer rows.Close()
	return scanVideoFieldValues(rows)
}

func (r *videoFieldValueRepository) ListByVideoIDs(ctx context.Context, videoIDs []uuid.UUID) ([]*models.VideoFieldValue, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+videoFieldValueColumns+` FROM video_field_values WHERE video_id = ANY($1)`, videoIDs)
	if err != nil {
		return nil, db.WrapError(err, "list batch field values")
	}
	defer rows.Close()
	return scanVideoFieldValues(rows)
}

func (r *videoFieldValueRepository) DeleteByVideoAndFields(ctx context.Context, videoID uuid.UUID, fieldIDs []uuid.UUID) error {
	if len(fieldIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`DELETE FROM video_field_values WHERE video_id=$1 AND field_id = ANY($2)`, videoID, fieldIDs)
	if err != nil {
		return db.WrapError(err, "delete field values")
	}
	return nil
}

func scanVideoFieldValues(rows pgx.Rows) ([]*models.VideoFieldValue, error) {
	var values []*models.VideoFieldValue
	for rows.Next() {
		v := &models.VideoFieldValue{}
		err := rows.Scan(&v.VideoID, &v.FieldID, &v.ValueText, &v.ValueNumeric, &v.ValueBoolean, &v.UpdatedAt)
		if err != nil {
			return nil, db.WrapError(err, "scan field value")
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate field values")
	}
	return values, nil
}
