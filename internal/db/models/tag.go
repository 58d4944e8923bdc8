package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag is per-user. is_video_type=true makes it a "category"; at most one
// category tag may be attached to a video at a time (spec.md §3, invariant
// 4 in §8).
type Tag struct {
	ID          uuid.UUID  `db:"id"`
	UserID      uuid.UUID  `db:"user_id"`
	Name        string     `db:"name"`
	Color       string     `db:"color"`
	IsVideoType bool       `db:"is_video_type"`
	SchemaID    *uuid.UUID `db:"schema_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func NewTag(userID uuid.UUID, name, color string, isVideoType bool, schemaID *uuid.UUID) *Tag {
	now := time.Now()
	return &Tag{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Color:       color,
		IsVideoType: isVideoType,
		SchemaID:    schemaID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// VideoTag is the join record attaching a Tag to a Video, carrying the
// attachment order the Field-Union Resolver relies on (spec.md §4.11).
type VideoTag struct {
	VideoID    uuid.UUID `db:"video_id"`
	TagID      uuid.UUID `db:"tag_id"`
	AttachedAt time.Time `db:"attached_at"`
}
