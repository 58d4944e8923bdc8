package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/testutil"
)

func TestListRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test requires a postgres container")
	}

	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	lists := NewListRepository(td.Pool)
	ctx := context.Background()

	t.Run("creates and fetches a list", func(t *testing.T) {
		td.TruncateTables(t)

		userID := uuid.New()
		list := models.NewList(userID, "Watch later")
		require.NoError(t, lists.Create(ctx, list))

		got, err := lists.GetByID(ctx, list.ID)
		require.NoError(t, err)
		assert.Equal(t, "Watch later", got.Name)
		assert.Equal(t, userID, got.UserID)
	})

	t.Run("lists by user id, most recent first", func(t *testing.T) {
		td.TruncateTables(t)

		userID := uuid.New()
		first := models.NewList(userID, "First")
		require.NoError(t, lists.Create(ctx, first))
		second := models.NewList(userID, "Second")
		require.NoError(t, lists.Create(ctx, second))

		others := models.NewList(uuid.New(), "Somebody else's list")
		require.NoError(t, lists.Create(ctx, others))

		got, err := lists.ListByUserID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, second.ID, got[0].ID)
		assert.Equal(t, first.ID, got[1].ID)
	})

	t.Run("delete removes the row", func(t *testing.T) {
		td.TruncateTables(t)

		list := models.NewList(uuid.New(), "Throwaway")
		require.NoError(t, lists.Create(ctx, list))
		require.NoError(t, lists.Delete(ctx, list.ID))

		_, err := lists.GetByID(ctx, list.ID)
		assert.True(t, db.IsNotFound(err))
	})

	t.Run("delete of unknown id is not found", func(t *testing.T) {
		td.TruncateTables(t)

		err := lists.Delete(ctx, uuid.New())
		assert.True(t, db.IsNotFound(err))
	})

	t.Run("get by unknown id is not found", func(t *testing.T) {
		td.TruncateTables(t)

		_, err := lists.GetByID(ctx, uuid.New())
		assert.True(t, db.IsNotFound(err))
	})
}
