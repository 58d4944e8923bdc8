package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// QuotaRepository defines operations for managing the YouTube Data API
// daily quota counter that gates the metadata stage (SPEC_FULL §5.5).
type QuotaRepository interface {
	GetTodaysQuota(ctx context.Context) (*models.QuotaInfo, error)
	IncrementQuota(ctx context.Context, quotaCost int, operationType string) error
	GetQuotaForDate(ctx context.Context, date time.Time) (*models.APIQuotaUsage, error)
	GetQuotaHistory(ctx context.Context, days int) ([]*models.APIQuotaUsage, error)
	CheckQuotaAvailable(ctx context.Context, requiredQuota int) (bool, error)
}

type quotaRepository struct {
	pool *pgxpool.Pool
}

func NewQuotaRepository(pool *pgxpool.Pool) QuotaRepository {
	return &quotaRepository{pool: pool}
}

func (r *quotaRepository) GetTodaysQuota(ctx context.Context) (*models.QuotaInfo, error) {
	query := `SELECT * FROM get_todays_quota_usage()`

	info := &models.QuotaInfo{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&info.QuotaUsed,
		&info.QuotaLimit,
		&info.QuotaRemaining,
		&info.OperationsCount,
	)
	if err != nil {
		return nil, db.WrapError(err, "get todays quota")
	}
	return info, nil
}

func (r *quotaRepository) IncrementQuota(ctx context.Context, quotaCost int, operationType string) error {
	if operationType == "" {
		operationType = "other"
	}
	_, err := r.pool.Exec(ctx, `SELECT increment_quota_usage($1, $2)`, quotaCost, operationType)
	if err != nil {
		return db.WrapError(err, "increment quota")
	}
	return nil
}

func (r *quotaRepository) GetQuotaForDate(ctx context.Context, date time.Time) (*models.APIQuotaUsage, error) {
	query := `
		SELECT id, date, quota_used, quota_limit, operations_count,
		       videos_list_calls, other_calls, created_at, updated_at
		FROM api_quota_usage
		WHERE date = $1
	`
	usage := &models.APIQuotaUsage{}
	err := r.pool.QueryRow(ctx, query, date.Format("2006-01-02")).Scan(
		&usage.ID, &usage.Date, &usage.QuotaUsed, &usage.QuotaLimit,
		&usage.OperationsCount, &usage.VideosListCalls, &usage.OtherCalls,
		&usage.CreatedAt, &usage.UpdatedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get quota for date")
	}
	return usage, nil
}

func (r *quotaRepository) GetQuotaHistory(ctx context.Context, days int) ([]*models.APIQuotaUsage, error) {
	if days <= 0 {
		days = 7
	}
	query := `
		SELECT id, date, quota_used, quota_limit, operations_count,
		       videos_list_calls, other_calls, created_at, updated_at
		FROM api_quota_usage
		WHERE date >= CURRENT_DATE - INTERVAL '1 day' * $1
		ORDER BY date DESC
	`
	rows, err := r.pool.Query(ctx, query, days)
	if err != nil {
		return nil, db.WrapError(err, "get quota history")
	}
	defer rows.Close()

	var history []*models.APIQuotaUsage
	for rows.Next() {
		usage := &models.APIQuotaUsage{}
		err := rows.Scan(
			&usage.ID, &usage.Date, &usage.QuotaUsed, &usage.QuotaLimit,
			&usage.OperationsCount, &usage.VideosListCalls, &usage.OtherCalls,
			&usage.CreatedAt, &usage.UpdatedAt,
		)
		if err != nil {
			return nil, db.WrapError(err, "scan quota history")
		}
		history = append(history, usage)
	}
	return history, nil
}

func (r *quotaRepository) CheckQuotaAvailable(ctx context.Context, requiredQuota int) (bool, error) {
	info, err := r.GetTodaysQuota(ctx)
	if err != nil {
		return false, err
	}
	return info.QuotaRemaining >= requiredQuota, nil
}
