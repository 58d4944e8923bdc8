// Package enrichment implements the per-video enrichment pipeline
// (spec.md §4.5): metadata, captions, and chapters, each modeled as a
// function from the current stage's inputs to the next stage.
//
// A Stage never retries itself; it reports a transient failure as a plain
// error (the worker retries the call up to its configured limit) and a
// non-retryable failure as an *apperr.Error (the worker moves the job
// straight to the error stage). captions and chapters never fail: per
// spec.md §4.5 they degrade to an empty/none source and the video still
// completes, ending in "partial" status.
package enrichment

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/service/youtube"
)

// Default per-stage deadlines (spec.md §6's T_metadata/T_captions/T_chapters),
// applied by each stage through stageTimeout when Deps leaves the
// corresponding field at zero.
const (
	DefaultMetadataTimeout = 20 * time.Second
	DefaultCaptionsTimeout = 60 * time.Second
	DefaultChaptersTimeout = 20 * time.Second
)

// StageInput is the mutable state a Stage reads and advances in place.
// Video and Enrichment are loaded by the worker before the call and
// persisted by it after; a Stage never touches the database itself.
type StageInput struct {
	Video      *models.Video
	Enrichment *models.Enrichment
}

// Stage advances a video one step through the pipeline.
type Stage func(ctx context.Context, in *StageInput) (next models.Stage, err error)

// ChaptersFetcher is an extension point for a platform chapters source.
// The YouTube Data API v3 does not expose chapters directly, so the
// default wiring leaves this nil and falls through to description parsing.
type ChaptersFetcher interface {
	FetchPlatformChapters(ctx context.Context, videoID string) ([]models.Chapter, error)
}

// CaptionsFetcher is an extension point for a captions source (manual,
// auto, or speech-to-text). The default wiring leaves this nil, in which
// case captions always degrade to CaptionSourceNone.
type CaptionsFetcher interface {
	// FetchCaptions returns the VTT text and the source it came from.
	// Implementations should themselves try manual captions, then auto
	// captions, then a speech-to-text fallback, per spec.md §4.5.
	FetchCaptions(ctx context.Context, videoID string) (vtt string, source models.CaptionSource, err error)
}

// YouTubeClient is the subset of internal/service/youtube.Client the
// pipeline needs. Declared here, at the point of use, so stage tests can
// substitute a fake instead of hitting the real YouTube Data API.
type YouTubeClient interface {
	FetchMetadata(ctx context.Context, videoIDs []string) (map[string]youtube.Metadata, int, error)
	FetchDescription(ctx context.Context, videoID string) (string, int, error)
}

// QuotaGate is the subset of internal/service/quota.Manager the pipeline
// needs, for the same reason as YouTubeClient.
type QuotaGate interface {
	CheckQuotaAvailable(ctx context.Context, requiredQuota int) (bool, *models.QuotaInfo, error)
	RecordQuotaUsage(ctx context.Context, quotaCost int, operationType string) error
}

// Deps are the pipeline's external dependencies. The *Timeout fields bound
// how long each stage will wait on its external call before giving up with
// a transient error for the worker to retry; a zero value takes the
// package Default for that stage.
type Deps struct {
	YouTube  YouTubeClient
	Quota    QuotaGate
	Limiter  *rate.Limiter
	Captions CaptionsFetcher
	Chapters ChaptersFetcher

	MetadataTimeout time.Duration
	CaptionsTimeout time.Duration
	ChaptersTimeout time.Duration
}

// Pipeline maps the stage a VideoJob currently sits at to the function
// that advances it.
type Pipeline struct {
	stages map[models.Stage]Stage
}

// stageTimeout returns configured if it is set, otherwise fallback. Stages
// call this rather than trust Deps directly so a zero-value Deps built by
// hand in a test still gets a sane, non-expired deadline.
func stageTimeout(configured, fallback time.Duration) time.Duration {
	if configured <= 0 {
		return fallback
	}
	return configured
}

// NewPipeline wires the four pipeline stages against deps. The map key is
// the VideoJob's current stage; the Stage function performs that stage's
// work and returns the stage to advance to next.
func NewPipeline(deps *Deps) *Pipeline {
	return &Pipeline{
		stages: map[models.Stage]Stage{
			models.StageCreated:  metadataStage(deps),
			models.StageMetadata: captionsStage(deps),
			models.StageCaptions: chaptersStage(deps),
			models.StageChapters: completeStage(deps),
		},
	}
}

// Stage returns the function that advances the given current stage, and
// whether one is registered for it (StageComplete and StageError have none).
func (p *Pipeline) Stage(current models.Stage) (Stage, bool) {
	s, ok := p.stages[current]
	return s, ok
}
