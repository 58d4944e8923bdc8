// Package fieldvalue implements the Field-Value Store of spec.md §4.10:
// typed coercion of a batch of raw values against their field definitions,
// and an all-or-nothing transactional write.
package fieldvalue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/apperr"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
	"github.com/0ui-labs/youtube-bookmarks/internal/fields"
)

// RawEntry is one requested write, as submitted by a PUT request body.
// Value is nil to clear the field; otherwise its concrete Go type depends
// on the field's FieldType (float64 for rating, string for select/text,
// bool for boolean).
type RawEntry struct {
	FieldID uuid.UUID
	Value   interface{}
}

// Store coerces and writes batches of field values (spec.md §4.10).
type Store struct {
	customFields repository.CustomFieldRepository
	values       repository.VideoFieldValueRepository
}

func NewStore(customFields repository.CustomFieldRepository, values repository.VideoFieldValueRepository) *Store {
	return &Store{customFields: customFields, values: values}
}

// WriteBatch coerces every entry against its field definition. If any entry
// is invalid, nothing is written (spec.md §4.10 "all-or-nothing").
func (s *Store) WriteBatch(ctx context.Context, videoID uuid.UUID, entries []RawEntry) error {
	coerced := make([]*models.VideoFieldValue, 0, len(entries))
	now := time.Now()

	for _, e := range entries {
		field, err := s.customFields.GetByID(ctx, e.FieldID)
		if err != nil {
			return apperr.NotFound("custom field", e.FieldID.String())
		}

		v, err := coerce(field, e.Value)
		if err != nil {
			return err
		}
		v.VideoID = videoID
		v.FieldID = e.FieldID
		v.UpdatedAt = now
		coerced = append(coerced, v)
	}

	return s.values.Upsert(ctx, coerced)
}

func coerce(field *models.CustomField, raw interface{}) (*models.VideoFieldValue, error) {
	v := &models.VideoFieldValue{}
	if raw == nil {
		return v, nil
	}

	switch field.FieldType {
	case models.FieldTypeRating:
		cfg, err := fields.DecodeRatingConfig(field.Config)
		if err != nil {
			return nil, err
		}
		n, ok := asFloat(raw)
		if !ok {
			return nil, apperr.Validation("field %q expects a numeric rating", field.Name)
		}
		i := int(n)
		if n != float64(i) || i < 0 || i > cfg.MaxRating {
			return nil, apperr.Validation("field %q rating must be an integer in [0,%d]", field.Name, cfg.MaxRating)
		}
		f := float64(i)
		v.ValueNumeric = &f

	case models.FieldTypeSelect:
		cfg, err := fields.DecodeSelectConfig(field.Config)
		if err != nil {
			return nil, err
		}
		text, ok := raw.(string)
		if !ok {
			return nil, apperr.Validation("field %q expects a string option", field.Name)
		}
		if !contains(cfg.Options, text) {
			return nil, apperr.Validation("field %q value %q is not one of the current options", field.Name, text)
		}
		v.ValueText = &text

	case models.FieldTypeText:
		cfg, err := fields.DecodeTextConfig(field.Config)
		if err != nil {
			return nil, err
		}
		text, ok := raw.(string)
		if !ok {
			return nil, apperr.Validation("field %q expects a string", field.Name)
		}
		if cfg.MaxLength > 0 && len(text) > cfg.MaxLength {
			return nil, apperr.Validation("field %q value exceeds max_length %d", field.Name, cfg.MaxLength)
		}
		v.ValueText = &text

	case models.FieldTypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, apperr.Validation("field %q expects a boolean", field.Name)
		}
		v.ValueBoolean = &b

	default:
		return nil, apperr.Validation("field %q has unknown type %q", field.Name, field.FieldType)
	}

	return v, nil
}

func asFloat(raw interface{}) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func contains(options []string, target string) bool {
	for _, o := range options {
		if o == target {
			return true
		}
	}
	return false
}
