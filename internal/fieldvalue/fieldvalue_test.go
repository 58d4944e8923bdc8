package fieldvalue

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/fields"
)

type fakeCustomFieldRepo struct {
	byID map[uuid.UUID]*models.CustomField
}

func (f *fakeCustomFieldRepo) Create(ctx context.Context, field *models.CustomField) error { return nil }
func (f *fakeCustomFieldRepo) Update(ctx context.Context, field *models.CustomField) error { return nil }
func (f *fakeCustomFieldRepo) Delete(ctx context.Context, id uuid.UUID) error              { return nil }
func (f *fakeCustomFieldRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CustomField, error) {
	return f.byID[id], nil
}
func (f *fakeCustomFieldRepo) ListByListID(ctx context.Context, listID uuid.UUID) ([]*models.CustomField, error) {
	return nil, nil
}
func (f *fakeCustomFieldRepo) ExistsByName(ctx context.Context, listID uuid.UUID, name string) (bool, error) {
	return false, nil
}

type fakeValueRepo struct {
	upserted []*models.VideoFieldValue
}

func (f *fakeValueRepo) Upsert(ctx context.Context, values []*models.VideoFieldValue) error {
	f.upserted = values
	return nil
}
func (f *fakeValueRepo) ListByVideoID(ctx context.Context, videoID uuid.UUID) ([]*models.VideoFieldValue, error) {
	return nil, nil
}
func (f *fakeValueRepo) ListByVideoIDs(ctx context.Context, videoIDs []uuid.UUID) ([]*models.VideoFieldValue, error) {
	return nil, nil
}
func (f *fakeValueRepo) DeleteByVideoAndFields(ctx context.Context, videoID uuid.UUID, fieldIDs []uuid.UUID) error {
	return nil
}

func TestStore_WriteBatch_Rating(t *testing.T) {
	ratingField := uuid.New()
	cfg, _ := fields.NewRatingConfig(5)
	customFields := &fakeCustomFieldRepo{byID: map[uuid.UUID]*models.CustomField{
		ratingField: {ID: ratingField, Name: "quality", FieldType: models.FieldTypeRating, Config: cfg},
	}}
	values := &fakeValueRepo{}
	store := NewStore(customFields, values)

	err := store.WriteBatch(context.Background(), uuid.New(), []RawEntry{
		{FieldID: ratingField, Value: float64(3)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values.upserted) != 1 || values.upserted[0].ValueNumeric == nil || *values.upserted[0].ValueNumeric != 3 {
		t.Fatalf("unexpected upserted values: %+v", values.upserted)
	}
}

func TestStore_WriteBatch_RatingOutOfRange(t *testing.T) {
	ratingField := uuid.New()
	cfg, _ := fields.NewRatingConfig(5)
	customFields := &fakeCustomFieldRepo{byID: map[uuid.UUID]*models.CustomField{
		ratingField: {ID: ratingField, Name: "quality", FieldType: models.FieldTypeRating, Config: cfg},
	}}
	store := NewStore(customFields, &fakeValueRepo{})

	err := store.WriteBatch(context.Background(), uuid.New(), []RawEntry{
		{FieldID: ratingField, Value: float64(9)},
	})
	if err == nil {
		t.Fatal("expected error for out-of-range rating")
	}
}

func TestStore_WriteBatch_AllOrNothing(t *testing.T) {
	goodField, badField := uuid.New(), uuid.New()
	ratingCfg, _ := fields.NewRatingConfig(5)
	selectCfg, _ := fields.NewSelectConfig([]string{"a", "b"})
	customFields := &fakeCustomFieldRepo{byID: map[uuid.UUID]*models.CustomField{
		goodField: {ID: goodField, Name: "quality", FieldType: models.FieldTypeRating, Config: ratingCfg},
		badField:  {ID: badField, Name: "status", FieldType: models.FieldTypeSelect, Config: selectCfg},
	}}
	values := &fakeValueRepo{}
	store := NewStore(customFields, values)

	err := store.WriteBatch(context.Background(), uuid.New(), []RawEntry{
		{FieldID: goodField, Value: float64(3)},
		{FieldID: badField, Value: "not-an-option"},
	})
	if err == nil {
		t.Fatal("expected error for invalid select value")
	}
	if values.upserted != nil {
		t.Errorf("expected no writes on validation failure, got %+v", values.upserted)
	}
}

func TestStore_WriteBatch_ClearsWithNil(t *testing.T) {
	textField := uuid.New()
	textCfg, _ := fields.NewTextConfig(0)
	customFields := &fakeCustomFieldRepo{byID: map[uuid.UUID]*models.CustomField{
		textField: {ID: textField, Name: "notes", FieldType: models.FieldTypeText, Config: textCfg},
	}}
	values := &fakeValueRepo{}
	store := NewStore(customFields, values)

	err := store.WriteBatch(context.Background(), uuid.New(), []RawEntry{
		{FieldID: textField, Value: nil},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values.upserted) != 1 || !values.upserted[0].Clear() {
		t.Fatalf("expected a clearing write, got %+v", values.upserted)
	}
}
