package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/testutil"
	"github.com/0ui-labs/youtube-bookmarks/internal/fields"
)

func TestVideoFieldValueRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test requires a postgres container")
	}

	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	lists := NewListRepository(td.Pool)
	videos := NewVideoRepository(td.Pool)
	customFields := NewCustomFieldRepository(td.Pool)
	values := NewVideoFieldValueRepository(td.Pool)
	ctx := context.Background()

	seedVideo := func(t *testing.T) *models.Video {
		t.Helper()
		list := models.NewList(uuid.New(), "My List")
		require.NoError(t, lists.Create(ctx, list))
		video := models.NewVideo(list.ID, "dQw4w9WgXcQ")
		require.NoError(t, videos.Create(ctx, video))
		return video
	}

	seedField := func(t *testing.T, listID uuid.UUID) *models.CustomField {
		t.Helper()
		config, err := fields.NewRatingConfig(10)
		require.NoError(t, err)
		field := models.NewCustomField(listID, "Rating", models.FieldTypeRating, config)
		require.NoError(t, customFields.Create(ctx, field))
		return field
	}

	t.Run("upserts and lists values for a video", func(t *testing.T) {
		td.TruncateTables(t)

		video := seedVideo(t)
		field := seedField(t, video.ListID)

		numeric := 8.0
		require.NoError(t, values.Upsert(ctx, []*models.VideoFieldValue{
			{VideoID: video.ID, FieldID: field.ID, ValueNumeric: &numeric, UpdatedAt: time.Now()},
		}))

		got, err := values.ListByVideoID(ctx, video.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.NotNil(t, got[0].ValueNumeric)
		assert.Equal(t, 8.0, *got[0].ValueNumeric)
	})

	t.Run("re-upserting the same key overwrites the value", func(t *testing.T) {
		td.TruncateTables(t)

		video := seedVideo(t)
		field := seedField(t, video.ListID)

		first := 8.0
		require.NoError(t, values.Upsert(ctx, []*models.VideoFieldValue{
			{VideoID: video.ID, FieldID: field.ID, ValueNumeric: &first, UpdatedAt: time.Now()},
		}))
		second := 3.0
		require.NoError(t, values.Upsert(ctx, []*models.VideoFieldValue{
			{VideoID: video.ID, FieldID: field.ID, ValueNumeric: &second, UpdatedAt: time.Now()},
		}))

		got, err := values.ListByVideoID(ctx, video.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 3.0, *got[0].ValueNumeric)
	})

	t.Run("upserting an all-nil value clears it outright", func(t *testing.T) {
		td.TruncateTables(t)

		video := seedVideo(t)
		field := seedField(t, video.ListID)

		numeric := 8.0
		require.NoError(t, values.Upsert(ctx, []*models.VideoFieldValue{
			{VideoID: video.ID, FieldID: field.ID, ValueNumeric: &numeric, UpdatedAt: time.Now()},
		}))
		require.NoError(t, values.Upsert(ctx, []*models.VideoFieldValue{
			{VideoID: video.ID, FieldID: field.ID, UpdatedAt: time.Now()},
		}))

		got, err := values.ListByVideoID(ctx, video.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("lists values across multiple videos in one call", func(t *testing.T) {
		td.TruncateTables(t)

		videoA := seedVideo(t)
		fieldA := seedField(t, videoA.ListID)
		videoB := seedVideo(t)
		fieldB := seedField(t, videoB.ListID)

		numeric := 5.0
		require.NoError(t, values.Upsert(ctx, []*models.VideoFieldValue{
			{VideoID: videoA.ID, FieldID: fieldA.ID, ValueNumeric: &numeric, UpdatedAt: time.Now()},
			{VideoID: videoB.ID, FieldID: fieldB.ID, ValueNumeric: &numeric, UpdatedAt: time.Now()},
		}))

		got, err := values.ListByVideoIDs(ctx, []uuid.UUID{videoA.ID, videoB.ID})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("deletes values for specific fields only", func(t *testing.T) {
		td.TruncateTables(t)

		video := seedVideo(t)
		fieldA := seedField(t, video.ListID)
		fieldB := seedField(t, video.ListID)

		numeric := 5.0
		require.NoError(t, values.Upsert(ctx, []*models.VideoFieldValue{
			{VideoID: video.ID, FieldID: fieldA.ID, ValueNumeric: &numeric, UpdatedAt: time.Now()},
			{VideoID: video.ID, FieldID: fieldB.ID, ValueNumeric: &numeric, UpdatedAt: time.Now()},
		}))

		require.NoError(t, values.DeleteByVideoAndFields(ctx, video.ID, []uuid.UUID{fieldA.ID}))

		got, err := values.ListByVideoID(ctx, video.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, fieldB.ID, got[0].FieldID)
	})
}
