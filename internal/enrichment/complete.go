package enrichment

import (
	"context"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// completeStage finalizes the enrichment record. A video whose captions
// or chapters degraded along the way finishes "partial"; otherwise
// "completed" (spec.md §4.5, §8 "partial enrichment").
func completeStage(deps *Deps) Stage {
	return func(ctx context.Context, in *StageInput) (models.Stage, error) {
		if in.Enrichment.CaptionSource == models.CaptionSourceNone || in.Enrichment.ChapterSource == models.ChapterSourceNone {
			in.Enrichment.Status = models.EnrichmentPartial
		} else {
			in.Enrichment.Status = models.EnrichmentCompleted
		}
		in.Video.MarkCompleted()
		return models.StageComplete, nil
	}
}
