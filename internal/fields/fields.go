// Package fields implements the typed Config sum type over
// models.CustomField.Config and the per-type validation rules of spec.md
// §4.8.
package fields

import (
	"encoding/json"
	"fmt"

	"github.com/0ui-labs/youtube-bookmarks/internal/apperr"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// SelectConfig is the Config payload for a FieldTypeSelect field.
type SelectConfig struct {
	Options []string `json:"options"`
}

// RatingConfig is the Config payload for a FieldTypeRating field.
type RatingConfig struct {
	MaxRating int `json:"max_rating"`
}

// TextConfig is the Config payload for a FieldTypeText field. MaxLength of
// zero means unbounded.
type TextConfig struct {
	MaxLength int `json:"max_length,omitempty"`
}

// BooleanConfig is the Config payload for a FieldTypeBoolean field; it
// carries no data but must marshal to `{}` (spec.md §4.8).
type BooleanConfig struct{}

func NewSelectConfig(options []string) (json.RawMessage, error) {
	if err := ValidateSelectOptions(options); err != nil {
		return nil, err
	}
	return json.Marshal(SelectConfig{Options: options})
}

func NewRatingConfig(maxRating int) (json.RawMessage, error) {
	if maxRating < 1 || maxRating > 10 {
		return nil, apperr.Validation("max_rating must be in [1,10], got %d", maxRating)
	}
	return json.Marshal(RatingConfig{MaxRating: maxRating})
}

func NewTextConfig(maxLength int) (json.RawMessage, error) {
	if maxLength < 0 {
		return nil, apperr.Validation("max_length must be >= 0")
	}
	return json.Marshal(TextConfig{MaxLength: maxLength})
}

func NewBooleanConfig() json.RawMessage {
	return json.RawMessage(`{}`)
}

// ValidateSelectOptions enforces non-empty, unique option strings.
func ValidateSelectOptions(options []string) error {
	if len(options) == 0 {
		return apperr.Validation("select options must be non-empty")
	}
	seen := make(map[string]struct{}, len(options))
	for _, o := range options {
		if o == "" {
			return apperr.Validation("select options must be non-empty strings")
		}
		if _, ok := seen[o]; ok {
			return apperr.Validation("select options must be unique, duplicate %q", o)
		}
		seen[o] = struct{}{}
	}
	return nil
}

// DecodeSelectConfig parses a CustomField's raw Config as a SelectConfig.
func DecodeSelectConfig(raw json.RawMessage) (*SelectConfig, error) {
	var cfg SelectConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, apperr.Validation("invalid select config: %v", err)
	}
	return &cfg, nil
}

// DecodeRatingConfig parses a CustomField's raw Config as a RatingConfig.
func DecodeRatingConfig(raw json.RawMessage) (*RatingConfig, error) {
	var cfg RatingConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, apperr.Validation("invalid rating config: %v", err)
	}
	return &cfg, nil
}

// DecodeTextConfig parses a CustomField's raw Config as a TextConfig.
func DecodeTextConfig(raw json.RawMessage) (*TextConfig, error) {
	var cfg TextConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, apperr.Validation("invalid text config: %v", err)
	}
	return &cfg, nil
}

// ValidateConfigForType checks that raw is a well-formed Config for
// fieldType, independent of any existing values (spec.md §4.8).
func ValidateConfigForType(fieldType models.FieldType, raw json.RawMessage) error {
	switch fieldType {
	case models.FieldTypeSelect:
		cfg, err := DecodeSelectConfig(raw)
		if err != nil {
			return err
		}
		return ValidateSelectOptions(cfg.Options)
	case models.FieldTypeRating:
		cfg, err := DecodeRatingConfig(raw)
		if err != nil {
			return err
		}
		if cfg.MaxRating < 1 || cfg.MaxRating > 10 {
			return apperr.Validation("max_rating must be in [1,10], got %d", cfg.MaxRating)
		}
		return nil
	case models.FieldTypeText:
		cfg, err := DecodeTextConfig(raw)
		if err != nil {
			return err
		}
		if cfg.MaxLength < 0 {
			return apperr.Validation("max_length must be >= 0")
		}
		return nil
	case models.FieldTypeBoolean:
		if string(raw) != "{}" && string(raw) != "" {
			return apperr.Validation("boolean field config must be {}")
		}
		return nil
	default:
		return apperr.Validation("unknown field type %q", fieldType)
	}
}

// NarrowingChange describes a Config edit that may conflict with values
// already stored. The custom-field update handler rejects any edit that
// produces one, listing the changes in the error details; no request form
// applies a narrowing edit, and stored values are never clipped or cleared.
type NarrowingChange struct {
	Kind   string // "option_removed", "max_rating_lowered", "max_length_shortened"
	Detail string
}

// DetectNarrowing compares an old Config to a new one for the same
// fieldType and reports changes that could invalidate existing values.
func DetectNarrowing(fieldType models.FieldType, oldRaw, newRaw json.RawMessage) ([]NarrowingChange, error) {
	var changes []NarrowingChange

	switch fieldType {
	case models.FieldTypeSelect:
		oldCfg, err := DecodeSelectConfig(oldRaw)
		if err != nil {
			return nil, err
		}
		newCfg, err := DecodeSelectConfig(newRaw)
		if err != nil {
			return nil, err
		}
		newSet := make(map[string]struct{}, len(newCfg.Options))
		for _, o := range newCfg.Options {
			newSet[o] = struct{}{}
		}
		for _, o := range oldCfg.Options {
			if _, ok := newSet[o]; !ok {
				changes = append(changes, NarrowingChange{Kind: "option_removed", Detail: o})
			}
		}
	case models.FieldTypeRating:
		oldCfg, err := DecodeRatingConfig(oldRaw)
		if err != nil {
			return nil, err
		}
		newCfg, err := DecodeRatingConfig(newRaw)
		if err != nil {
			return nil, err
		}
		if newCfg.MaxRating < oldCfg.MaxRating {
			changes = append(changes, NarrowingChange{
				Kind:   "max_rating_lowered",
				Detail: fmt.Sprintf("%d -> %d", oldCfg.MaxRating, newCfg.MaxRating),
			})
		}
	case models.FieldTypeText:
		oldCfg, err := DecodeTextConfig(oldRaw)
		if err != nil {
			return nil, err
		}
		newCfg, err := DecodeTextConfig(newRaw)
		if err != nil {
			return nil, err
		}
		if newCfg.MaxLength > 0 && (oldCfg.MaxLength == 0 || newCfg.MaxLength < oldCfg.MaxLength) {
			changes = append(changes, NarrowingChange{
				Kind:   "max_length_shortened",
				Detail: fmt.Sprintf("%d -> %d", oldCfg.MaxLength, newCfg.MaxLength),
			})
		}
	case models.FieldTypeBoolean:
		// {} to {} — nothing to narrow.
	}

	return changes, nil
}
