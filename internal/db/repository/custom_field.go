package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// CustomFieldRepository defines operations for managing per-list custom
// fields (spec.md §3, §4.8). Names are unique per list case-insensitively.
type CustomFieldRepository interface {
	Create(ctx context.Context, field *models.CustomField) error
	Update(ctx context.Context, field *models.CustomField) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CustomField, error)
	ListByListID(ctx context.Context, listID uuid.UUID) ([]*models.CustomField, error)
	ExistsByName(ctx context.Context, listID uuid.UUID, name string) (bool, error)
}

type customFieldRepository struct {
	pool *pgxpool.Pool
}

func NewCustomFieldRepository(pool *pgxpool.Pool) CustomFieldRepository {
	return &customFieldRepository{pool: pool}
}

const customFieldColumns = `id, list_id, name, field_type, config, created_at, updated_at`

func (r *customFieldRepository) Create(ctx context.Context, field *models.CustomField) error {
	query := `INSERT INTO custom_fields (` + customFieldColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		field.ID, field.ListID, field.Name, field.FieldType, field.Config, field.CreatedAt, field.UpdatedAt,
	)
	if err != nil {
		return db.WrapError(err, "create custom field")
	}
	return nil
}

func (r *customFieldRepository) Update(ctx context.Context, field *models.CustomField) error {
	query := `UPDATE custom_fields SET name=$2, config=$3, updated_at=$4 WHERE id=$1`
	result, err := r.pool.Exec(ctx, query, field.ID, field.Name, field.Config, field.UpdatedAt)
	if err != nil {
		return db.WrapError(err, "update custom field")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "update custom field")
	}
	return nil
}

func (r *customFieldRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM custom_fields WHERE id=$1`, id)
	if err != nil {
		return db.WrapError(err, "delete custom field")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "delete custom field")
	}
	return nil
}

func (r *customFieldRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CustomField, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customFieldColumns+` FROM custom_fields WHERE id=$1`, id)
	return scanCustomField(row)
}

func (r *customFieldRepository) ListByListID(ctx context.Context, listID uuid.UUID) ([]*models.CustomField, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customFieldColumns+` FROM custom_fields WHERE list_id=$1 ORDER BY name ASC`, listID)
	if err != nil {
		return nil, db.WrapError(err, "list custom fields")
	}
	defer rows.Close()

	var fields []*models.CustomField
	for rows.Next() {
		f, err := scanCustomField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate custom fields")
	}
	return fields, nil
}

func (r *customFieldRepository) ExistsByName(ctx context.Context, listID uuid.UUID, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM custom_fields WHERE list_id=$1 AND lower(name)=lower($2))`
	err := r.pool.QueryRow(ctx, query, listID, name).Scan(&exists)
	if err != nil {
		return false, db.WrapError(err, "check custom field name")
	}
	return exists, nil
}

func scanCustomField(row rowScanner) (*models.CustomField, error) {
	f := &models.CustomField{}
	err := row.Scan(&f.ID, &f.ListID, &f.Name, &f.FieldType, &f.Config, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, db.WrapError(err, "scan custom field")
	}
	return f, nil
}
