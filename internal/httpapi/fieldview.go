package httpapi

import (
	"context"

	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/union"
)

// fieldsByID loads every custom field owned by listID, keyed by id, so
// filled-value responses can attach a name/type without one lookup per value.
func (h *Handlers) fieldsByID(ctx context.Context, listID uuid.UUID) (map[uuid.UUID]*models.CustomField, error) {
	fields, err := h.customFields.ListByListID(ctx, listID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.CustomField, len(fields))
	for _, f := range fields {
		byID[f.ID] = f
	}
	return byID, nil
}

// filledValueDTOs converts the set values for one video into display DTOs,
// skipping any value whose field was deleted out from under it.
func filledValueDTOs(values []*models.VideoFieldValue, byID map[uuid.UUID]*models.CustomField) []FieldValueDTO {
	dtos := make([]FieldValueDTO, 0, len(values))
	for _, v := range values {
		if v.Clear() {
			continue
		}
		field, ok := byID[v.FieldID]
		if !ok {
			continue
		}
		dtos = append(dtos, valueDTOFor(v, field))
	}
	return dtos
}

// availableFields runs the Field-Union Resolver for one video: its attached
// tags' schemas (in attachment order) plus the list's workspace schema
// (spec.md §4.11).
func (h *Handlers) availableFields(ctx context.Context, listID, videoID uuid.UUID) ([]AvailableFieldDTO, error) {
	tags, err := h.tags.ListByVideoID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	tagGroups := make([][]union.SchemaFieldEntry, 0, len(tags))
	for _, t := range tags {
		if t.SchemaID == nil {
			continue
		}
		entries, err := h.schemaFieldEntries(ctx, *t.SchemaID)
		if err != nil {
			return nil, err
		}
		tagGroups = append(tagGroups, entries)
	}

	var workspaceEntries []union.SchemaFieldEntry
	workspace, err := h.schemas.GetWorkspaceDefault(ctx, listID)
	if err != nil {
		if !db.IsNotFound(err) {
			return nil, err
		}
	} else {
		workspaceEntries, err = h.schemaFieldEntries(ctx, workspace.ID)
		if err != nil {
			return nil, err
		}
	}

	resolved := union.Resolve(tagGroups, workspaceEntries)
	dtos := make([]AvailableFieldDTO, 0, len(resolved))
	for _, r := range resolved {
		dtos = append(dtos, AvailableFieldDTO{
			FieldID:    r.Field.ID,
			Name:       r.EffectiveDisplayName,
			FieldType:  r.Field.FieldType,
			ShowOnCard: r.ShowOnCard,
		})
	}
	return dtos, nil
}

func (h *Handlers) schemaFieldEntries(ctx context.Context, schemaID uuid.UUID) ([]union.SchemaFieldEntry, error) {
	schema, err := h.schemas.GetByID(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	members, err := h.schemas.ListFields(ctx, schemaID)
	if err != nil {
		return nil, err
	}

	entries := make([]union.SchemaFieldEntry, 0, len(members))
	for _, m := range members {
		field, err := h.customFields.GetByID(ctx, m.FieldID)
		if err != nil {
			if db.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		entries = append(entries, union.SchemaFieldEntry{
			Field:      field,
			SchemaName: schema.Name,
			ShowOnCard: m.ShowOnCard,
		})
	}
	return entries, nil
}
