// Package quota gates the enrichment pipeline's metadata stage behind the
// YouTube Data API's daily quota (spec.md §6 "Configuration options",
// SPEC_FULL §5.5).
package quota

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

// Manager tracks and gates YouTube Data API quota usage.
type Manager struct {
	repo             repository.QuotaRepository
	thresholdPercent int
}

// NewManager creates a quota manager. thresholdPercent stops processing
// once that fraction of the day's quota_limit (stored per-row in the DB)
// is used, default 90.
func NewManager(repo repository.QuotaRepository, thresholdPercent int) *Manager {
	if thresholdPercent <= 0 || thresholdPercent > 100 {
		thresholdPercent = 90
	}
	return &Manager{repo: repo, thresholdPercent: thresholdPercent}
}

// CheckQuotaAvailable reports whether requiredQuota units may still be
// spent today without crossing the configured threshold.
func (m *Manager) CheckQuotaAvailable(ctx context.Context, requiredQuota int) (bool, *models.QuotaInfo, error) {
	info, err := m.repo.GetTodaysQuota(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("failed to get quota info: %w", err)
	}

	thresholdQuota := (info.QuotaLimit * m.thresholdPercent) / 100
	if info.QuotaUsed >= thresholdQuota {
		logger.Log.Warn("quota threshold reached",
			zap.Int("quota_used", info.QuotaUsed), zap.Int("quota_limit", info.QuotaLimit))
		return false, info, nil
	}
	if info.QuotaUsed+requiredQuota > thresholdQuota {
		logger.Log.Warn("not enough quota for operation",
			zap.Int("required", requiredQuota), zap.Int("quota_remaining", info.QuotaRemaining))
		return false, info, nil
	}

	return true, info, nil
}

// RecordQuotaUsage records a completed API call's cost against today's quota.
func (m *Manager) RecordQuotaUsage(ctx context.Context, quotaCost int, operationType string) error {
	if err := m.repo.IncrementQuota(ctx, quotaCost, operationType); err != nil {
		return fmt.Errorf("failed to record quota usage: %w", err)
	}
	return nil
}

// GetQuotaInfo returns today's quota usage snapshot.
func (m *Manager) GetQuotaInfo(ctx context.Context) (*models.QuotaInfo, error) {
	return m.repo.GetTodaysQuota(ctx)
}
