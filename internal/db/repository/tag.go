package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// TagRepository defines operations for managing Tags and their attachment
// to videos (spec.md §3, §4.11, invariant 4 in §8).
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Tag, error)

	Attach(ctx context.Context, videoID, tagID uuid.UUID) error
	Detach(ctx context.Context, videoID, tagID uuid.UUID) error
	ListByVideoID(ctx context.Context, videoID uuid.UUID) ([]*models.Tag, error)
	GetAttachedCategory(ctx context.Context, videoID uuid.UUID) (*models.Tag, error)
}

type tagRepository struct {
	pool *pgxpool.Pool
}

func NewTagRepository(pool *pgxpool.Pool) TagRepository {
	return &tagRepository{pool: pool}
}

const tagColumns = `id, user_id, name, color, is_video_type, schema_id, created_at, updated_at`

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	query := `INSERT INTO tags (` + tagColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		tag.ID, tag.UserID, tag.Name, tag.Color, tag.IsVideoType, tag.SchemaID, tag.CreatedAt, tag.UpdatedAt,
	)
	if err != nil {
		return db.WrapError(err, "create tag")
	}
	return nil
}

func (r *tagRepository) Update(ctx context.Context, tag *models.Tag) error {
	query := `
		UPDATE tags SET name=$2, color=$3, is_video_type=$4, schema_id=$5, updated_at=$6
		WHERE id=$1
	`
	result, err := r.pool.Exec(ctx, query, tag.ID, tag.Name, tag.Color, tag.IsVideoType, tag.SchemaID, tag.UpdatedAt)
	if err != nil {
		return db.WrapError(err, "update tag")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "update tag")
	}
	return nil
}

func (r *tagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id=$1`, id)
	if err != nil {
		return db.WrapError(err, "delete tag")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "delete tag")
	}
	return nil
}

func (r *tagRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tagColumns+` FROM tags WHERE id=$1`, id)
	return scanTag(row)
}

func (r *tagRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tagColumns+` FROM tags WHERE user_id=$1 ORDER BY name ASC`, userID)
	if err != nil {
		return nil, db.WrapError(err, "list tags")
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate tags")
	}
	return tags, nil
}

func (r *tagRepository) Attach(ctx context.Context, videoID, tagID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO video_tags (video_id, tag_id, attached_at) VALUES ($1,$2,NOW())`,
		videoID, tagID)
	if err != nil {
		return db.WrapError(err, "attach tag")
	}
	return nil
}

func (r *tagRepository) Detach(ctx context.Context, videoID, tagID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM video_tags WHERE video_id=$1 AND tag_id=$2`, videoID, tagID)
	if err != nil {
		return db.WrapError(err, "detach tag")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "detach tag")
	}
	return nil
}

func (r *tagRepository) ListByVideoID(ctx context.Context, videoID uuid.UUID) ([]*models.Tag, error) {
	query := `
		SELECT t.id, t.user_id, t.name, t.color, t.is_video_type, t.schema_id, t.created_at, t.updated_at
		FROM tags t
		JOIN video_tags vt ON vt.tag_id = t.id
		WHERE vt.video_id = $1
		ORDER BY vt.attached_at ASC
	`
	rows, err := r.pool.Query(ctx, query, videoID)
	if err != nil {
		return nil, db.WrapError(err, "list video tags")
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate video tags")
	}
	return tags, nil
}

// GetAttachedCategory returns the single is_video_type tag attached to a
// video, if any (spec.md invariant 4 in §8: at most one).
func (r *tagRepository) GetAttachedCategory(ctx context.Context, videoID uuid.UUID) (*models.Tag, error) {
	query := `
		SELECT t.id, t.user_id, t.name, t.color, t.is_video_type, t.schema_id, t.created_at, t.updated_at
		FROM tags t
		JOIN video_tags vt ON vt.tag_id = t.id
		WHERE vt.video_id = $1 AND t.is_video_type = true
		LIMIT 1
	`
	row := r.pool.QueryRow(ctx, query, videoID)
	return scanTag(row)
}

func scanTag(row rowScanner) (*models.Tag, error) {
	t := &models.Tag{}
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.IsVideoType, &t.SchemaID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, db.WrapError(err, "scan tag")
	}
	return t, nil
}
