package models

import (
	"time"

	"github.com/google/uuid"
)

// VideoFieldValue is per (video_id, field_id) unique; exactly one of the
// typed columns is non-null, selected by the field's type (spec.md §3,
// invariant 5 in §8). All-null means "cleared".
type VideoFieldValue struct {
	VideoID       uuid.UUID `db:"video_id"`
	FieldID       uuid.UUID `db:"field_id"`
	ValueText     *string   `db:"value_text"`
	ValueNumeric  *float64  `db:"value_numeric"`
	ValueBoolean  *bool     `db:"value_boolean"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Clear reports whether all three typed columns are null.
func (v *VideoFieldValue) Clear() bool {
	return v.ValueText == nil && v.ValueNumeric == nil && v.ValueBoolean == nil
}
