package schema

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/apperr"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
)

type fakeFieldSchemaRepo struct {
	replaced []*models.SchemaField
}

func (f *fakeFieldSchemaRepo) Create(ctx context.Context, s *models.FieldSchema) error { return nil }
func (f *fakeFieldSchemaRepo) Delete(ctx context.Context, id uuid.UUID) error           { return nil }
func (f *fakeFieldSchemaRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FieldSchema, error) {
	return nil, nil
}
func (f *fakeFieldSchemaRepo) ListByListID(ctx context.Context, listID uuid.UUID) ([]*models.FieldSchema, error) {
	return nil, nil
}
func (f *fakeFieldSchemaRepo) GetWorkspaceDefault(ctx context.Context, listID uuid.UUID) (*models.FieldSchema, error) {
	return nil, nil
}
func (f *fakeFieldSchemaRepo) ListFields(ctx context.Context, schemaID uuid.UUID) ([]*models.SchemaField, error) {
	return nil, nil
}
func (f *fakeFieldSchemaRepo) ReplaceFields(ctx context.Context, schemaID uuid.UUID, fields []*models.SchemaField) error {
	f.replaced = fields
	return nil
}

type fakeCustomFieldRepo struct {
	fieldsByID map[uuid.UUID]*models.CustomField
}

func (f *fakeCustomFieldRepo) Create(ctx context.Context, field *models.CustomField) error { return nil }
func (f *fakeCustomFieldRepo) Update(ctx context.Context, field *models.CustomField) error { return nil }
func (f *fakeCustomFieldRepo) Delete(ctx context.Context, id uuid.UUID) error              { return nil }
func (f *fakeCustomFieldRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CustomField, error) {
	field, ok := f.fieldsByID[id]
	if !ok {
		return nil, apperr.NotFound("custom field", id.String())
	}
	return field, nil
}
func (f *fakeCustomFieldRepo) ListByListID(ctx context.Context, listID uuid.UUID) ([]*models.CustomField, error) {
	return nil, nil
}
func (f *fakeCustomFieldRepo) ExistsByName(ctx context.Context, listID uuid.UUID, name string) (bool, error) {
	return false, nil
}

var (
	_ repository.FieldSchemaRepository = (*fakeFieldSchemaRepo)(nil)
	_ repository.CustomFieldRepository = (*fakeCustomFieldRepo)(nil)
)

func TestManager_Replace_ShowOnCardLimit(t *testing.T) {
	listID := uuid.New()
	f1, f2, f3, f4 := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	fields := &fakeCustomFieldRepo{fieldsByID: map[uuid.UUID]*models.CustomField{
		f1: {ID: f1, ListID: listID},
		f2: {ID: f2, ListID: listID},
		f3: {ID: f3, ListID: listID},
		f4: {ID: f4, ListID: listID},
	}}
	schemas := &fakeFieldSchemaRepo{}
	m := NewManager(schemas, fields)

	entries := []FieldEntry{
		{FieldID: f1, DisplayOrder: 0, ShowOnCard: true},
		{FieldID: f2, DisplayOrder: 1, ShowOnCard: true},
		{FieldID: f3, DisplayOrder: 2, ShowOnCard: true},
		{FieldID: f4, DisplayOrder: 3, ShowOnCard: true},
	}

	err := m.Replace(context.Background(), listID, uuid.New(), entries)
	if err == nil {
		t.Fatal("expected error for 4 show_on_card fields")
	}
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.KindSchemaInvariant {
		t.Errorf("expected KindSchemaInvariant, got %v", err)
	}
}

func TestManager_Replace_DuplicateDisplayOrder(t *testing.T) {
	listID := uuid.New()
	f1, f2 := uuid.New(), uuid.New()
	fields := &fakeCustomFieldRepo{fieldsByID: map[uuid.UUID]*models.CustomField{
		f1: {ID: f1, ListID: listID},
		f2: {ID: f2, ListID: listID},
	}}
	m := NewManager(&fakeFieldSchemaRepo{}, fields)

	entries := []FieldEntry{
		{FieldID: f1, DisplayOrder: 0},
		{FieldID: f2, DisplayOrder: 0},
	}

	err := m.Replace(context.Background(), listID, uuid.New(), entries)
	if err == nil {
		t.Fatal("expected error for duplicate display_order")
	}
}

func TestManager_Replace_FieldFromWrongList(t *testing.T) {
	listID := uuid.New()
	otherListID := uuid.New()
	f1 := uuid.New()
	fields := &fakeCustomFieldRepo{fieldsByID: map[uuid.UUID]*models.CustomField{
		f1: {ID: f1, ListID: otherListID},
	}}
	m := NewManager(&fakeFieldSchemaRepo{}, fields)

	entries := []FieldEntry{{FieldID: f1, DisplayOrder: 0}}

	err := m.Replace(context.Background(), listID, uuid.New(), entries)
	if err == nil {
		t.Fatal("expected error for field belonging to a different list")
	}
}

func TestManager_Replace_Valid(t *testing.T) {
	listID := uuid.New()
	f1, f2 := uuid.New(), uuid.New()
	fields := &fakeCustomFieldRepo{fieldsByID: map[uuid.UUID]*models.CustomField{
		f1: {ID: f1, ListID: listID},
		f2: {ID: f2, ListID: listID},
	}}
	schemas := &fakeFieldSchemaRepo{}
	m := NewManager(schemas, fields)

	entries := []FieldEntry{
		{FieldID: f1, DisplayOrder: 0, ShowOnCard: true},
		{FieldID: f2, DisplayOrder: 5, ShowOnCard: false},
	}

	if err := m.Replace(context.Background(), listID, uuid.New(), entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schemas.replaced) != 2 {
		t.Fatalf("expected 2 replaced fields, got %d", len(schemas.replaced))
	}
}
