package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/apperr"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/schema"
)

func (h *Handlers) ListSchemas(c *gin.Context) {
	ctx := c.Request.Context()
	listID, err := uuid.Parse(c.Param("list_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid list id"))
		return
	}

	schemas, err := h.schemas.ListByListID(ctx, listID)
	if err != nil {
		respondError(c, err)
		return
	}

	dtos := make([]FieldSchemaDTO, 0, len(schemas))
	for _, s := range schemas {
		dto, err := h.schemaToDTO(ctx, s)
		if err != nil {
			respondError(c, err)
			return
		}
		dtos = append(dtos, dto)
	}
	c.JSON(http.StatusOK, dtos)
}

func (h *Handlers) schemaToDTO(ctx context.Context, s *models.FieldSchema) (FieldSchemaDTO, error) {
	members, err := h.schemas.ListFields(ctx, s.ID)
	if err != nil {
		return FieldSchemaDTO{}, err
	}
	fieldDTOs := make([]SchemaFieldDTO, 0, len(members))
	for _, m := range members {
		fieldDTOs = append(fieldDTOs, schemaFieldToDTO(m))
	}
	return FieldSchemaDTO{
		ID:                 s.ID,
		ListID:             s.ListID,
		Name:               s.Name,
		IsWorkspaceDefault: s.IsWorkspaceDefault,
		Fields:             fieldDTOs,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}, nil
}

type schemaFieldRequest struct {
	FieldID      uuid.UUID `json:"field_id" binding:"required"`
	DisplayOrder int       `json:"display_order"`
	ShowOnCard   bool      `json:"show_on_card"`
}

type createSchemaRequest struct {
	Name               string               `json:"name" binding:"required"`
	IsWorkspaceDefault bool                 `json:"is_workspace_default"`
	Fields             []schemaFieldRequest `json:"fields"`
}

// CreateSchema handles POST /lists/:list_id/schemas. Membership invariants
// (unique display_order, unique field_id, at most 3 show_on_card) are
// enforced by schema.Manager.Replace (spec.md §4.9).
func (h *Handlers) CreateSchema(c *gin.Context) {
	ctx := c.Request.Context()
	listID, err := uuid.Parse(c.Param("list_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid list id"))
		return
	}

	var req createSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	s := models.NewFieldSchema(listID, req.Name, req.IsWorkspaceDefault)
	if err := h.schemas.Create(ctx, s); err != nil {
		respondError(c, err)
		return
	}

	if len(req.Fields) > 0 {
		entries := requestToFieldEntries(req.Fields)
		if err := h.schemaMgr.Replace(ctx, listID, s.ID, entries); err != nil {
			respondError(c, err)
			return
		}
	}

	dto, err := h.schemaToDTO(ctx, s)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}

type updateSchemaRequest struct {
	Name   string               `json:"name" binding:"required"`
	Fields []schemaFieldRequest `json:"fields"`
}

// UpdateSchema handles PUT /lists/:list_id/schemas/:schema_id, renaming the
// schema and atomically replacing its field membership.
func (h *Handlers) UpdateSchema(c *gin.Context) {
	ctx := c.Request.Context()
	listID, err := uuid.Parse(c.Param("list_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid list id"))
		return
	}
	schemaID, err := uuid.Parse(c.Param("schema_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid schema id"))
		return
	}

	s, err := h.schemas.GetByID(ctx, schemaID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "schema", schemaID.String()))
		return
	}

	var req updateSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	s.Name = req.Name
	s.UpdatedAt = time.Now()
	if err := h.schemas.Update(ctx, s); err != nil {
		respondError(c, err)
		return
	}

	entries := requestToFieldEntries(req.Fields)
	if err := h.schemaMgr.Replace(ctx, listID, schemaID, entries); err != nil {
		respondError(c, err)
		return
	}

	dto, err := h.schemaToDTO(ctx, s)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *Handlers) DeleteSchema(c *gin.Context) {
	schemaID, err := uuid.Parse(c.Param("schema_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid schema id"))
		return
	}

	if err := h.schemas.Delete(c.Request.Context(), schemaID); err != nil {
		respondError(c, notFoundOrWrap(err, "schema", schemaID.String()))
		return
	}
	c.Status(http.StatusNoContent)
}

func requestToFieldEntries(reqs []schemaFieldRequest) []schema.FieldEntry {
	entries := make([]schema.FieldEntry, len(reqs))
	for i, r := range reqs {
		entries[i] = schema.FieldEntry{FieldID: r.FieldID, DisplayOrder: r.DisplayOrder, ShowOnCard: r.ShowOnCard}
	}
	return entries
}
