package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FieldType discriminates CustomField.Config's tagged union (spec.md §3,
// §9 "Dynamic typed configs"). The sum type itself lives in
// internal/fields; this package stores only the persisted shape.
type FieldType string

const (
	FieldTypeSelect  FieldType = "select"
	FieldTypeRating  FieldType = "rating"
	FieldTypeText    FieldType = "text"
	FieldTypeBoolean FieldType = "boolean"
)

// CustomField is per-list, unique on (list_id, lower(name)) (spec.md §3).
// Config is the raw JSON persisted alongside the FieldType discriminator;
// internal/fields.Config is the validated, typed view over it.
type CustomField struct {
	ID        uuid.UUID       `db:"id"`
	ListID    uuid.UUID       `db:"list_id"`
	Name      string          `db:"name"`
	FieldType FieldType       `db:"field_type"`
	Config    json.RawMessage `db:"config"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func NewCustomField(listID uuid.UUID, name string, fieldType FieldType, config json.RawMessage) *CustomField {
	now := time.Now()
	return &CustomField{
		ID:        uuid.New(),
		ListID:    listID,
		Name:      name,
		FieldType: fieldType,
		Config:    config,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
