package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// FieldSchemaRepository defines operations for managing FieldSchemas and
// their ordered SchemaField members (spec.md §3, §4.9).
type FieldSchemaRepository interface {
	Create(ctx context.Context, schema *models.FieldSchema) error
	Update(ctx context.Context, schema *models.FieldSchema) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FieldSchema, error)
	ListByListID(ctx context.Context, listID uuid.UUID) ([]*models.FieldSchema, error)
	GetWorkspaceDefault(ctx context.Context, listID uuid.UUID) (*models.FieldSchema, error)

	ListFields(ctx context.Context, schemaID uuid.UUID) ([]*models.SchemaField, error)
	// ReplaceFields atomically replaces a schema's field membership and
	// ordering in a single transaction (spec.md §4.9 "atomic reorder").
	ReplaceFields(ctx context.Context, schemaID uuid.UUID, fields []*models.SchemaField) error
}

type fieldSchemaRepository struct {
	pool *pgxpool.Pool
}

func NewFieldSchemaRepository(pool *pgxpool.Pool) FieldSchemaRepository {
	return &fieldSchemaRepository{pool: pool}
}

const fieldSchemaColumns = `id, list_id, name, is_workspace_default, created_at, updated_at`

func (r *fieldSchemaRepository) Create(ctx context.Context, schema *models.FieldSchema) error {
	query := `INSERT INTO field_schemas (` + fieldSchemaColumns + `) VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.pool.Exec(ctx, query,
		schema.ID, schema.ListID, schema.Name, schema.IsWorkspaceDefault, schema.CreatedAt, schema.UpdatedAt,
	)
	if err != nil {
		return db.WrapError(err, "create field schema")
	}
	return nil
}

func (r *fieldSchemaRepository) Update(ctx context.Context, schema *models.FieldSchema) error {
	query := `UPDATE field_schemas SET name=$2, updated_at=$3 WHERE id=$1`
	result, err := r.pool.Exec(ctx, query, schema.ID, schema.Name, schema.UpdatedAt)
	if err != nil {
		return db.WrapError(err, "update field schema")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "update field schema")
	}
	return nil
}

func (r *fieldSchemaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM field_schemas WHERE id=$1`, id)
	if err != nil {
		return db.WrapError(err, "delete field schema")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "delete field schema")
	}
	return nil
}

func (r *fieldSchemaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FieldSchema, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+fieldSchemaColumns+` FROM field_schemas WHERE id=$1`, id)
	return scanFieldSchema(row)
}

func (r *fieldSchemaRepository) ListByListID(ctx context.Context, listID uuid.UUID) ([]*models.FieldSchema, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+fieldSchemaColumns+` FROM field_schemas WHERE list_id=$1 ORDER BY name ASC`, listID)
	if err != nil {
		return nil, db.WrapError(err, "list field schemas")
	}
	defer rows.Close()

	var schemas []*models.FieldSchema
	for rows.Next() {
		s, err := scanFieldSchema(rows)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate field schemas")
	}
	return schemas, nil
}

func (r *fieldSchemaRepository) GetWorkspaceDefault(ctx context.Context, listID uuid.UUID) (*models.FieldSchema, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+fieldSchemaColumns+` FROM field_schemas WHERE list_id=$1 AND is_workspace_default=true LIMIT 1`, listID)
	return scanFieldSchema(row)
}

func (r *fieldSchemaRepository) ListFields(ctx context.Context, schemaID uuid.UUID) ([]*models.SchemaField, error) {
	query := `
		SELECT id, schema_id, field_id, display_order, show_on_card
		FROM schema_fields
		WHERE schema_id=$1
		ORDER BY display_order ASC
	`
	rows, err := r.pool.Query(ctx, query, schemaID)
	if err != nil {
		return nil, db.WrapError(err, "list schema fields")
	}
	defer rows.Close()

	var fields []*models.SchemaField
	for rows.Next() {
		f := &models.SchemaField{}
		if err := rows.Scan(&f.ID, &f.SchemaID, &f.FieldID, &f.DisplayOrder, &f.ShowOnCard); err != nil {
			return nil, db.WrapError(err, "scan schema field")
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate schema fields")
	}
	return fields, nil
}

func (r *fieldSchemaRepository) ReplaceFields(ctx context.Context, schemaID uuid.UUID, fields []*models.SchemaField) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.WrapError(err, "begin replace schema fields")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM schema_fields WHERE schema_id=$1`, schemaID); err != nil {
		return db.WrapError(err, "clear schema fields")
	}

	for _, f := range fields {
		_, err := tx.Exec(ctx,
			`INSERT INTO schema_fields (id, schema_id, field_id, display_order, show_on_card) VALUES ($1,$2,$3,$4,$5)`,
			f.ID, schemaID, f.FieldID, f.DisplayOrder, f.ShowOnCard,
		)
		if err != nil {
			return db.WrapError(err, "insert schema field")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return db.WrapError(err, "commit replace schema fields")
	}
	return nil
}

func scanFieldSchema(row rowScanner) (*models.FieldSchema, error) {
	s := &models.FieldSchema{}
	err := row.Scan(&s.ID, &s.ListID, &s.Name, &s.IsWorkspaceDefault, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, db.WrapError(err, "scan field schema")
	}
	return s, nil
}
