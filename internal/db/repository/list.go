package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// ListRepository defines operations for managing lists (spec.md §3).
type ListRepository interface {
	Create(ctx context.Context, list *models.List) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.List, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.List, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type listRepository struct {
	pool *pgxpool.Pool
}

func NewListRepository(pool *pgxpool.Pool) ListRepository {
	return &listRepository{pool: pool}
}

const listColumns = `id, user_id, name, created_at, updated_at`

func (r *listRepository) Create(ctx context.Context, l *models.List) error {
	query := `INSERT INTO lists (` + listColumns + `) VALUES ($1,$2,$3,$4,$5)`
	_, err := r.pool.Exec(ctx, query, l.ID, l.UserID, l.Name, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return db.WrapError(err, "create list")
	}
	return nil
}

func (r *listRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.List, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+listColumns+` FROM lists WHERE id=$1`, id)
	l := &models.List{}
	err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, db.WrapError(err, "get list")
	}
	return l, nil
}

func (r *listRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.List, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+listColumns+` FROM lists WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, db.WrapError(err, "list lists")
	}
	defer rows.Close()

	var lists []*models.List
	for rows.Next() {
		l := &models.List{}
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, db.WrapError(err, "scan list")
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate lists")
	}
	return lists, nil
}

func (r *listRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE id=$1`, id)
	if err != nil {
		return db.WrapError(err, "delete list")
	}
	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "delete list")
	}
	return nil
}
