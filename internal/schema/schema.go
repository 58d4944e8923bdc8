// Package schema implements the Schema Manager of spec.md §4.9: the
// invariants a FieldSchema's member fields must satisfy on every write, and
// the atomic reorder operation.
package schema

import (
	"context"

	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/apperr"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
)

const maxShowOnCard = 3

// FieldEntry is one requested member of a schema, as submitted by a
// reorder/replace request.
type FieldEntry struct {
	FieldID      uuid.UUID
	DisplayOrder int
	ShowOnCard   bool
}

// Manager enforces spec.md §4.9's invariants around FieldSchemaRepository.
type Manager struct {
	schemas repository.FieldSchemaRepository
	fields  repository.CustomFieldRepository
}

func NewManager(schemas repository.FieldSchemaRepository, fields repository.CustomFieldRepository) *Manager {
	return &Manager{schemas: schemas, fields: fields}
}

// Replace validates entries against invariants 1-4 of spec.md §4.9 and, if
// they hold, atomically replaces the schema's field membership.
func (m *Manager) Replace(ctx context.Context, listID, schemaID uuid.UUID, entries []FieldEntry) error {
	if err := m.validate(ctx, listID, entries); err != nil {
		return err
	}

	sfs := make([]*models.SchemaField, len(entries))
	for i, e := range entries {
		sfs[i] = &models.SchemaField{
			ID:           uuid.New(),
			SchemaID:     schemaID,
			FieldID:      e.FieldID,
			DisplayOrder: e.DisplayOrder,
			ShowOnCard:   e.ShowOnCard,
		}
	}

	return m.schemas.ReplaceFields(ctx, schemaID, sfs)
}

func (m *Manager) validate(ctx context.Context, listID uuid.UUID, entries []FieldEntry) error {
	showOnCardCount := 0
	seenOrder := make(map[int]struct{}, len(entries))
	seenField := make(map[uuid.UUID]struct{}, len(entries))

	for _, e := range entries {
		if e.ShowOnCard {
			showOnCardCount++
		}
		if _, dup := seenOrder[e.DisplayOrder]; dup {
			return apperr.WithDetails(apperr.KindSchemaInvariant,
				"display_order values must be unique",
				map[string]interface{}{"display_order": e.DisplayOrder})
		}
		seenOrder[e.DisplayOrder] = struct{}{}

		if _, dup := seenField[e.FieldID]; dup {
			return apperr.WithDetails(apperr.KindSchemaInvariant,
				"field_id values must be unique within the schema",
				map[string]interface{}{"field_id": e.FieldID.String()})
		}
		seenField[e.FieldID] = struct{}{}

		field, err := m.fields.GetByID(ctx, e.FieldID)
		if err != nil {
			return apperr.NotFound("custom field", e.FieldID.String())
		}
		if field.ListID != listID {
			return apperr.WithDetails(apperr.KindSchemaInvariant,
				"field does not belong to the schema's list",
				map[string]interface{}{"field_id": e.FieldID.String()})
		}
	}

	if showOnCardCount > maxShowOnCard {
		return apperr.WithDetails(apperr.KindSchemaInvariant,
			"at most 3 fields may be shown on card",
			map[string]interface{}{"rule": "max_show_on_card=3", "show_on_card_count": showOnCardCount})
	}

	return nil
}
