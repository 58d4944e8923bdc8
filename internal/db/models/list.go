package models

import (
	"time"

	"github.com/google/uuid"
)

// List is the top-level container owning Videos, CustomFields, and
// FieldSchemas (spec.md §3 "Ownership").
type List struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func NewList(userID uuid.UUID, name string) *List {
	now := time.Now()
	return &List{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
