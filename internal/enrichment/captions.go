package enrichment

import (
	"context"

	"go.uber.org/zap"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

// captionsStage tries manual captions, then auto captions, then a
// speech-to-text fallback, via the pluggable CaptionsFetcher. Missing
// captions never fail the video (spec.md §4.5); they leave CaptionSource
// at CaptionSourceNone, and the completed video is marked "partial".
func captionsStage(deps *Deps) Stage {
	return func(ctx context.Context, in *StageInput) (models.Stage, error) {
		if deps.Captions == nil {
			in.Enrichment.CaptionSource = models.CaptionSourceNone
			return models.StageCaptions, nil
		}

		ctx, cancel := context.WithTimeout(ctx, stageTimeout(deps.CaptionsTimeout, DefaultCaptionsTimeout))
		defer cancel()

		vtt, source, err := deps.Captions.FetchCaptions(ctx, in.Video.CanonicalID)
		if err != nil {
			logger.Log.Warn("captions unavailable, degrading to none",
				zap.String("video_id", in.Video.ID.String()), zap.Error(err))
			in.Enrichment.CaptionSource = models.CaptionSourceNone
			return models.StageCaptions, nil
		}

		in.Enrichment.CaptionsVTT = &vtt
		in.Enrichment.CaptionSource = source
		if transcript := vttToTranscript(vtt); transcript != "" {
			in.Enrichment.Transcript = &transcript
		}

		return models.StageCaptions, nil
	}
}
