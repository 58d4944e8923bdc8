package models

import "github.com/google/uuid"

// EnrichmentStatus tracks the per-video Enrichment record's overall outcome
// (spec.md §3), distinct from Video.ProcessingStatus.
type EnrichmentStatus string

const (
	EnrichmentPending    EnrichmentStatus = "pending"
	EnrichmentProcessing EnrichmentStatus = "processing"
	EnrichmentCompleted  EnrichmentStatus = "completed"
	EnrichmentPartial    EnrichmentStatus = "partial"
	EnrichmentFailed     EnrichmentStatus = "failed"
)

// CaptionSource records which caption source ultimately populated the
// Enrichment, per spec.md §3 and the captions stage of §4.5.
type CaptionSource string

const (
	CaptionSourceNone    CaptionSource = ""
	CaptionSourceManual  CaptionSource = "manual"
	CaptionSourceAuto    CaptionSource = "auto"
	CaptionSourceWhisper CaptionSource = "whisper-like"
)

// ChapterSource records how Chapters were obtained (spec.md §4.5).
type ChapterSource string

const (
	ChapterSourceNone        ChapterSource = ""
	ChapterSourcePlatform    ChapterSource = "platform"
	ChapterSourceDescription ChapterSource = "description"
)

// Chapter is one entry of Enrichment.Chapters.
type Chapter struct {
	Title string  `json:"title"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Enrichment is one-to-one with Video (spec.md §3). CaptionsVTT is
// authoritative for chapters/player when present; Transcript is always
// derived (see DESIGN.md's Open Question decision).
type Enrichment struct {
	ID            uuid.UUID        `db:"id"`
	VideoID       uuid.UUID        `db:"video_id"`
	CaptionsVTT   *string          `db:"captions_vtt"`
	Transcript    *string          `db:"transcript"`
	CaptionSource CaptionSource    `db:"caption_source"`
	Chapters      []Chapter        `db:"chapters"`
	ChapterSource ChapterSource    `db:"chapter_source"`
	Status        EnrichmentStatus `db:"status"`
	ProgressMsg   *string          `db:"progress_message"`
	RetryCount    int              `db:"retry_count"`
	ErrorMessage  *string          `db:"error_message"`
}

func NewEnrichment(videoID uuid.UUID) *Enrichment {
	return &Enrichment{
		ID:      uuid.New(),
		VideoID: videoID,
		Status:  EnrichmentPending,
	}
}
