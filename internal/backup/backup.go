// Package backup implements Backup/Restore on Category Switch (spec.md
// §4.12): when a video's category tag changes, the values attached to
// custom fields owned by the old category's schema are snapshotted out of
// the live row and removed, then restored verbatim if the video is ever
// switched back to that same category.
package backup

import (
	"context"

	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
)

// Manager coordinates the snapshot/remove/restore cycle across the backup,
// value, schema, and custom-field repositories.
type Manager struct {
	backups      repository.FieldValueBackupRepository
	values       repository.VideoFieldValueRepository
	customFields repository.CustomFieldRepository
	schemas      repository.FieldSchemaRepository
}

func NewManager(backups repository.FieldValueBackupRepository, values repository.VideoFieldValueRepository, customFields repository.CustomFieldRepository, schemas repository.FieldSchemaRepository) *Manager {
	return &Manager{backups: backups, values: values, customFields: customFields, schemas: schemas}
}

// SwitchCategory snapshots the video's current values for fromSchemaID's
// fields (if any are set) under fromCategoryID/fromCategoryName, removes
// them from the live row, and — if the video had a prior backup under
// toCategoryID — restores those values. fromCategoryID is uuid.Nil when the
// video had no prior category; fromSchemaID is nil when that prior category
// carried no schema; toCategoryID is uuid.Nil when the video is being
// uncategorized.
func (m *Manager) SwitchCategory(ctx context.Context, videoID, fromCategoryID uuid.UUID, fromCategoryName string, fromSchemaID *uuid.UUID, toCategoryID uuid.UUID) error {
	if fromCategoryID != uuid.Nil && fromSchemaID != nil {
		if err := m.snapshotAndClear(ctx, videoID, fromCategoryID, fromCategoryName, *fromSchemaID); err != nil {
			return err
		}
	}

	if toCategoryID != uuid.Nil {
		if err := m.restore(ctx, videoID, toCategoryID); err != nil {
			return err
		}
	}

	return nil
}

// snapshotAndClear backs up the video's current values for fields owned by
// schemaID, then deletes those live values. A schema with no member fields,
// or a video with no set values for them, is a no-op — spec.md §4.12 only
// snapshots what is actually present.
func (m *Manager) snapshotAndClear(ctx context.Context, videoID, categoryID uuid.UUID, categoryName string, schemaID uuid.UUID) error {
	members, err := m.schemas.ListFields(ctx, schemaID)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}

	fieldsByID := make(map[uuid.UUID]*models.CustomField, len(members))
	for _, sf := range members {
		field, err := m.customFields.GetByID(ctx, sf.FieldID)
		if err != nil {
			if db.IsNotFound(err) {
				continue
			}
			return err
		}
		fieldsByID[field.ID] = field
	}
	if len(fieldsByID) == 0 {
		return nil
	}

	current, err := m.values.ListByVideoID(ctx, videoID)
	if err != nil {
		return err
	}

	var snapshot []models.BackedUpValue
	var toClear []uuid.UUID
	for _, v := range current {
		field, owned := fieldsByID[v.FieldID]
		if !owned || v.Clear() {
			continue
		}
		snapshot = append(snapshot, models.BackedUpValue{
			FieldID:      v.FieldID,
			FieldName:    field.Name,
			ValueText:    v.ValueText,
			ValueNumeric: v.ValueNumeric,
			ValueBoolean: v.ValueBoolean,
		})
		toClear = append(toClear, v.FieldID)
	}

	if len(snapshot) == 0 {
		return nil
	}

	if err := m.backups.Upsert(ctx, models.NewFieldValueBackup(videoID, categoryID, categoryName, snapshot)); err != nil {
		return err
	}
	return m.values.DeleteByVideoAndFields(ctx, videoID, toClear)
}

// restore writes back a prior snapshot for categoryID, if one exists. A
// missing backup (never previously categorized this way) is a no-op.
func (m *Manager) restore(ctx context.Context, videoID, categoryID uuid.UUID) error {
	snapshot, err := m.backups.Get(ctx, videoID, categoryID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil
		}
		return err
	}

	restored := make([]*models.VideoFieldValue, 0, len(snapshot.Values))
	for _, bv := range snapshot.Values {
		restored = append(restored, &models.VideoFieldValue{
			VideoID:      videoID,
			FieldID:      bv.FieldID,
			ValueText:    bv.ValueText,
			ValueNumeric: bv.ValueNumeric,
			ValueBoolean: bv.ValueBoolean,
		})
	}
	return m.values.Upsert(ctx, restored)
}
