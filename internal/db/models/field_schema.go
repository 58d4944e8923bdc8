package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldSchema is a named, ordered set of fields attachable to a tag
// (spec.md §3, §4.9). IsWorkspaceDefault marks the list's workspace schema,
// whose fields apply to every video regardless of tags (GLOSSARY
// "Workspace schema").
type FieldSchema struct {
	ID                 uuid.UUID `db:"id"`
	ListID             uuid.UUID `db:"list_id"`
	Name               string    `db:"name"`
	IsWorkspaceDefault bool      `db:"is_workspace_default"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func NewFieldSchema(listID uuid.UUID, name string, isWorkspaceDefault bool) *FieldSchema {
	now := time.Now()
	return &FieldSchema{
		ID:                 uuid.New(),
		ListID:             listID,
		Name:               name,
		IsWorkspaceDefault: isWorkspaceDefault,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// SchemaField is the join record ordering a CustomField within a
// FieldSchema (spec.md §3, §4.9 invariants).
type SchemaField struct {
	ID           uuid.UUID `db:"id"`
	SchemaID     uuid.UUID `db:"schema_id"`
	FieldID      uuid.UUID `db:"field_id"`
	DisplayOrder int       `db:"display_order"`
	ShowOnCard   bool      `db:"show_on_card"`
}
