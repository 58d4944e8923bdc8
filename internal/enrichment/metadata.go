package enrichment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/0ui-labs/youtube-bookmarks/internal/apperr"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

// metadataQuotaCost mirrors the videos.list call's unit cost the youtube
// client charges for a snippet+contentDetails fetch.
const metadataQuotaCost = 3

// metadataStage fetches title, channel, thumbnail, duration, and
// published_at for a single video (spec.md §4.5). A network failure is
// transient; a quota-exhausted gate or a video absent from the API response
// (removed or private) is reported as a non-retryable apperr.Error so the
// worker does not burn retries on an outcome that will not change on retry.
func metadataStage(deps *Deps) Stage {
	return func(ctx context.Context, in *StageInput) (models.Stage, error) {
		ctx, cancel := context.WithTimeout(ctx, stageTimeout(deps.MetadataTimeout, DefaultMetadataTimeout))
		defer cancel()

		ok, _, err := deps.Quota.CheckQuotaAvailable(ctx, metadataQuotaCost)
		if err != nil {
			return "", fmt.Errorf("metadata stage: check quota: %w", err)
		}
		if !ok {
			return models.StageError, apperr.WithDetails(apperr.KindEnrichmentFailed,
				"daily YouTube Data API quota threshold reached",
				map[string]interface{}{"reason": "quota_exhausted"})
		}

		if deps.Limiter != nil {
			if err := deps.Limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("metadata stage: rate limit wait: %w", err)
			}
		}

		results, cost, fetchErr := deps.YouTube.FetchMetadata(ctx, []string{in.Video.CanonicalID})
		if fetchErr != nil {
			return "", fmt.Errorf("metadata stage: fetch: %w", fetchErr)
		}
		if err := deps.Quota.RecordQuotaUsage(ctx, cost, "videos.list"); err != nil {
			logger.Log.Warn("failed to record quota usage", zap.Error(err))
		}

		meta, ok := results[in.Video.CanonicalID]
		if !ok {
			return models.StageError, apperr.WithDetails(apperr.KindEnrichmentFailed,
				"video is unavailable (removed or private)",
				map[string]interface{}{"reason": "source_unavailable"})
		}

		publishedAt, err := time.Parse(time.RFC3339, meta.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}
		in.Video.ApplyMetadata(meta.Title, meta.Channel, meta.ThumbnailURL, meta.DurationSeconds, publishedAt)

		return models.StageMetadata, nil
	}
}
