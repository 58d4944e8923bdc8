package models

import (
	"time"

	"github.com/google/uuid"
)

// BackedUpValue is one entry of a FieldValueBackup's snapshot payload.
type BackedUpValue struct {
	FieldID      uuid.UUID `json:"field_id"`
	FieldName    string    `json:"field_name"`
	ValueText    *string   `json:"value_text,omitempty"`
	ValueNumeric *float64  `json:"value_numeric,omitempty"`
	ValueBoolean *bool     `json:"value_boolean,omitempty"`
}

// FieldValueBackup is an out-of-row snapshot keyed by (video_id,
// category_tag_id), an idempotent overwrite per key where the latest
// snapshot wins (spec.md §3, §4.12).
type FieldValueBackup struct {
	VideoID      uuid.UUID       `db:"video_id"`
	CategoryID   uuid.UUID       `db:"category_tag_id"`
	CategoryName string          `db:"category_name"`
	Values       []BackedUpValue `db:"values"`
	CreatedAt    time.Time       `db:"created_at"`
}

func NewFieldValueBackup(videoID, categoryID uuid.UUID, categoryName string, values []BackedUpValue) *FieldValueBackup {
	return &FieldValueBackup{
		VideoID:      videoID,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Values:       values,
		CreatedAt:    time.Now(),
	}
}
