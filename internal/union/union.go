// Package union implements the Field-Union Resolver of spec.md §4.11: given
// a video's attached tags and the list's workspace schema, compute the
// effective ordered field list for display, renaming fields whose name
// collides across schemas with a differing type.
package union

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// SchemaFieldEntry pairs a CustomField with its SchemaField membership and
// the schema it came from, as loaded by the caller.
type SchemaFieldEntry struct {
	Field      *models.CustomField
	SchemaName string
	ShowOnCard bool
}

// ResolvedField is one item of the resolved union, in first-seen order.
type ResolvedField struct {
	Field              *models.CustomField
	EffectiveDisplayName string
	ShowOnCard         bool
}

// Resolve computes the effective field list per spec.md §4.11.
//
// tagSchemaFields holds one slice per attached tag, in tag-attachment
// order, each already containing that tag's schema's fields in schema
// display order. workspaceFields is the list's workspace-default schema's
// fields, appended last.
func Resolve(tagSchemaFields [][]SchemaFieldEntry, workspaceFields []SchemaFieldEntry) []ResolvedField {
	var ordered []SchemaFieldEntry
	for _, group := range tagSchemaFields {
		ordered = append(ordered, group...)
	}
	ordered = append(ordered, workspaceFields...)

	// Pass 1: group by case-insensitive name, detect type conflicts.
	type group struct {
		entries []SchemaFieldEntry
		types   map[models.FieldType]struct{}
	}
	groups := make(map[string]*group)

	for _, e := range ordered {
		key := strings.ToLower(e.Field.Name)
		g, ok := groups[key]
		if !ok {
			g = &group{types: make(map[models.FieldType]struct{})}
			groups[key] = g
		}
		g.entries = append(g.entries, e)
		g.types[e.Field.FieldType] = struct{}{}
	}

	// Pass 2: rename conflicting groups, preserve first-seen field order.
	seen := make(map[uuid.UUID]struct{})
	var result []ResolvedField
	for _, e := range ordered {
		if _, dup := seen[e.Field.ID]; dup {
			continue
		}
		seen[e.Field.ID] = struct{}{}

		key := strings.ToLower(e.Field.Name)
		g := groups[key]
		name := e.Field.Name
		if len(g.types) > 1 {
			name = fmt.Sprintf("%s: %s", e.SchemaName, e.Field.Name)
		}

		result = append(result, ResolvedField{
			Field:                e.Field,
			EffectiveDisplayName: name,
			ShowOnCard:           e.ShowOnCard,
		})
	}

	return result
}
