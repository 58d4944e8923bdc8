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

// FieldValueBackupRepository defines operations for snapshotting field
// values on category switch, restorable on opt back in (spec.md §4.12).
// An upsert on (video_id, category_tag_id) keeps only the latest snapshot.
type FieldValueBackupRepository interface {
	Upsert(ctx context.Context, backup *models.FieldValueBackup) error
	Get(ctx context.Context, videoID, categoryID uuid.UUID) (*models.FieldValueBackup, error)
	Delete(ctx context.Context, videoID, categoryID uuid.UUID) error
}

type fieldValueBackupRepository struct {
	pool *pgxpool.Pool
}

func NewFieldValueBackupRepository(pool *pgxpool.Pool) FieldValueBackupRepository {
	return &fieldValueBackupRepository{pool: pool}
}

func (r *fieldValueBackupRepository) Upsert(ctx context.Context, backup *models.FieldValueBackup) error {
	valuesJSON, err := json.Marshal(backup.Values)
	if err != nil {
		return db.WrapError(err, "marshal backup values")
	}

	query := `
		INSERT INTO field_value_backups (video_id, category_tag_id, category_name, values, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (video_id, category_tag_id) DO UPDATE SET
			category_name=EXCLUDED.category_name,
			values=EXCLUDED.values,
			created_at=EXCLUDED.created_at
	`
	_, err = r.pool.Exec(ctx, query, backup.VideoID, backup.CategoryID, backup.CategoryName, valuesJSON, backup.CreatedAt)
	if err != nil {
		return db.WrapError(err, "upsert field value backup")
	}
	return nil
}

func (r *fieldValueBackupRepository) Get(ctx context.Context, videoID, categoryID uuid.UUID) (*models.FieldValueBackup, error) {
	query := `
		SELECT video_id, category_tag_id, category_name, values, created_at
		FROM field_value_backups
		WHERE video_id=$1 AND category_tag_id=$2
	`
	backup := &models.FieldValueBackup{}
	var valuesJSON []byte
	err := r.pool.QueryRow(ctx, query, videoID, categoryID).Scan(
		&backup.VideoID, &backup.CategoryID, &backup.CategoryName, &valuesJSON, &backup.CreatedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get field value backup")
	}
	if len(valuesJSON) > 0 {
		if err := json.Unmarshal(valuesJSON, &backup.Values); err != nil {
			return nil, db.WrapError(err, "unmarshal backup values")
		}
	}
	return backup, nil
}

func (r *fieldValueBackupRepository) Delete(ctx context.Context, videoID, categoryID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM field_value_backups WHERE video_id=$1 AND category_tag_id=$2`, videoID, categoryID)
	if err != nil {
		return db.WrapError(err, "delete field value backup")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "delete field value backup")
	}
	return nil
}
