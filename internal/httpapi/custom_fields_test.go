package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/fields"
)

func TestCreateCustomField(t *testing.T) {
	t.Run("rejects a duplicate name in the same list", func(t *testing.T) {
		d := newTestDeps()
		list := models.NewList(uuid.New(), "My List")
		require.NoError(t, d.lists.Create(context.Background(), list))

		config, err := fields.NewRatingConfig(5)
		require.NoError(t, err)
		existing := models.NewCustomField(list.ID, "Rating", models.FieldTypeRating, config)
		require.NoError(t, d.customFields.Create(context.Background(), existing))

		req := newJSONRequest(http.MethodPost, "/lists/"+list.ID.String()+"/custom-fields", createCustomFieldRequest{
			Name: "Rating", FieldType: models.FieldTypeRating, Config: config,
		})
		ctx, w := newTestContext(req, gin.Params{{Key: "list_id", Value: list.ID.String()}})

		d.h.CreateCustomField(ctx)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("rejects an invalid config for the field type", func(t *testing.T) {
		d := newTestDeps()
		list := models.NewList(uuid.New(), "My List")
		require.NoError(t, d.lists.Create(context.Background(), list))

		req := newJSONRequest(http.MethodPost, "/lists/"+list.ID.String()+"/custom-fields", createCustomFieldRequest{
			Name: "Rating", FieldType: models.FieldTypeRating, Config: json.RawMessage(`{"max_rating":99}`),
		})
		ctx, w := newTestContext(req, gin.Params{{Key: "list_id", Value: list.ID.String()}})

		d.h.CreateCustomField(ctx)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Empty(t, d.customFields.byID)
	})

	t.Run("creates a well-formed field", func(t *testing.T) {
		d := newTestDeps()
		list := models.NewList(uuid.New(), "My List")
		require.NoError(t, d.lists.Create(context.Background(), list))

		config, err := fields.NewSelectConfig([]string{"todo", "done"})
		require.NoError(t, err)
		req := newJSONRequest(http.MethodPost, "/lists/"+list.ID.String()+"/custom-fields", createCustomFieldRequest{
			Name: "Status", FieldType: models.FieldTypeSelect, Config: config,
		})
		ctx, w := newTestContext(req, gin.Params{{Key: "list_id", Value: list.ID.String()}})

		d.h.CreateCustomField(ctx)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Len(t, d.customFields.byID, 1)
	})
}

func TestUpdateCustomField_NarrowingRequiresConfirmation(t *testing.T) {
	d := newTestDeps()
	list := models.NewList(uuid.New(), "My List")
	require.NoError(t, d.lists.Create(context.Background(), list))

	config, err := fields.NewRatingConfig(10)
	require.NoError(t, err)
	field := models.NewCustomField(list.ID, "Rating", models.FieldTypeRating, config)
	require.NoError(t, d.customFields.Create(context.Background(), field))

	narrowed, err := fields.NewRatingConfig(3)
	require.NoError(t, err)
	req := newJSONRequest(http.MethodPut, "/lists/"+list.ID.String()+"/custom-fields/"+field.ID.String(),
		updateCustomFieldRequest{Name: "Rating", Config: narrowed})
	ctx, w := newTestContext(req, gin.Params{
		{Key: "list_id", Value: list.ID.String()},
		{Key: "field_id", Value: field.ID.String()},
	})

	d.h.UpdateCustomField(ctx)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, config, field.Config, "config is left unchanged when narrowing is not confirmed")
}

func TestDeleteCustomField_BlockedWhileReferencedBySchema(t *testing.T) {
	d := newTestDeps()
	list := models.NewList(uuid.New(), "My List")
	require.NoError(t, d.lists.Create(context.Background(), list))

	config, err := fields.NewTextConfig(0)
	require.NoError(t, err)
	field := models.NewCustomField(list.ID, "Notes", models.FieldTypeText, config)
	require.NoError(t, d.customFields.Create(context.Background(), field))

	schema := models.NewFieldSchema(list.ID, "Default", true)
	require.NoError(t, d.schemas.Create(context.Background(), schema))
	d.schemas.fieldsBy[schema.ID] = []*models.SchemaField{{SchemaID: schema.ID, FieldID: field.ID}}

	req := httptest.NewRequest(http.MethodDelete, "/lists/"+list.ID.String()+"/custom-fields/"+field.ID.String(), nil)
	ctx, w := newTestContext(req, gin.Params{
		{Key: "list_id", Value: list.ID.String()},
		{Key: "field_id", Value: field.ID.String()},
	})

	d.h.DeleteCustomField(ctx)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, d.customFields.byID, field.ID)
}

func TestCheckDuplicateField(t *testing.T) {
	d := newTestDeps()
	list := models.NewList(uuid.New(), "My List")
	require.NoError(t, d.lists.Create(context.Background(), list))

	config, err := fields.NewTextConfig(0)
	require.NoError(t, err)
	field := models.NewCustomField(list.ID, "Notes", models.FieldTypeText, config)
	require.NoError(t, d.customFields.Create(context.Background(), field))

	req := newJSONRequest(http.MethodPost, "/lists/"+list.ID.String()+"/custom-fields/check-duplicate", checkDuplicateRequest{Name: "notes"})
	ctx, w := newTestContext(req, gin.Params{{Key: "list_id", Value: list.ID.String()}})

	d.h.CheckDuplicateField(ctx)

	require.Equal(t, http.StatusOK, w.Code)
	var resp checkDuplicateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Exists)
	require.NotNil(t, resp.Field)
	assert.Equal(t, field.ID, resp.Field.ID)
}
