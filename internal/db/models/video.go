// Package models holds the persisted entities of the ingestion/enrichment
// domain (spec.md §3): List, Video, Enrichment, Tag, CustomField,
// FieldSchema, SchemaField, VideoFieldValue, FieldValueBackup,
// IngestionJob, VideoJob, and ProgressEvent.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingStatus is the Video lifecycle status (spec.md §3).
type ProcessingStatus string

const (
	ProcessingPending    ProcessingStatus = "pending"
	ProcessingProcessing ProcessingStatus = "processing"
	ProcessingCompleted  ProcessingStatus = "completed"
	ProcessingFailed     ProcessingStatus = "failed"
)

// Video is owned by a List, keyed by (list_id, canonical_youtube_id) unique.
type Video struct {
	ID               uuid.UUID        `db:"id"`
	ListID           uuid.UUID        `db:"list_id"`
	CanonicalID      string           `db:"canonical_youtube_id"`
	Title            *string          `db:"title"`
	Channel          *string          `db:"channel"`
	ThumbnailURL     *string          `db:"thumbnail_url"`
	DurationSeconds  *int64           `db:"duration_seconds"`
	PublishedAt      *time.Time       `db:"published_at"`
	ProcessingStatus ProcessingStatus `db:"processing_status"`
	FailureReason    *string          `db:"failure_reason"`
	WatchPosition    *int64           `db:"watch_position"`
	CreatedAt        time.Time        `db:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at"`
}

// NewVideo constructs a Video in its initial "pending" state, ready for the
// worker pool to pick up (spec.md §4.3).
func NewVideo(listID uuid.UUID, canonicalID string) *Video {
	now := time.Now()
	return &Video{
		ID:               uuid.New(),
		ListID:           listID,
		CanonicalID:      canonicalID,
		ProcessingStatus: ProcessingPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ApplyMetadata records the result of the metadata enrichment stage.
func (v *Video) ApplyMetadata(title, channel, thumbnailURL string, duration int64, publishedAt time.Time) {
	v.Title = &title
	v.Channel = &channel
	v.ThumbnailURL = &thumbnailURL
	v.DurationSeconds = &duration
	v.PublishedAt = &publishedAt
	v.UpdatedAt = time.Now()
}

// MarkCompleted transitions the video to its terminal success state.
func (v *Video) MarkCompleted() {
	v.ProcessingStatus = ProcessingCompleted
	v.FailureReason = nil
	v.UpdatedAt = time.Now()
}

// MarkFailed transitions the video to its terminal failure state with a reason.
func (v *Video) MarkFailed(reason string) {
	v.ProcessingStatus = ProcessingFailed
	v.FailureReason = &reason
	v.UpdatedAt = time.Now()
}

// ResetForRetry transitions a failed video back to pending so the worker
// pool picks it up again (spec.md §7 "manual retry is supported"). The
// pipeline restarts from its first stage: nothing upstream of metadata
// records which stage failed, so a full re-run is the only state that is
// always consistent.
func (v *Video) ResetForRetry() {
	v.ProcessingStatus = ProcessingPending
	v.FailureReason = nil
	v.UpdatedAt = time.Now()
}

// SetWatchPosition is the one mutation the player makes directly (spec.md §3).
func (v *Video) SetWatchPosition(seconds int64) {
	v.WatchPosition = &seconds
	v.UpdatedAt = time.Now()
}
