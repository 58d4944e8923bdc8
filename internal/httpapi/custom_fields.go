package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/apperr"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/fields"
)

type createCustomFieldRequest struct {
	Name      string           `json:"name" binding:"required"`
	FieldType models.FieldType `json:"field_type" binding:"required"`
	Config    json.RawMessage  `json:"config"`
}

func (h *Handlers) ListCustomFields(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("list_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid list id"))
		return
	}

	list, err := h.customFields.ListByListID(c.Request.Context(), listID)
	if err != nil {
		respondError(c, err)
		return
	}
	dtos := make([]CustomFieldDTO, 0, len(list))
	for _, f := range list {
		dtos = append(dtos, customFieldToDTO(f))
	}
	c.JSON(http.StatusOK, dtos)
}

// CreateCustomField handles POST /lists/:list_id/custom-fields. Name
// collisions are case-insensitive (spec.md §3) and surfaced as
// duplicate_name with the existing field attached (spec.md §7).
func (h *Handlers) CreateCustomField(c *gin.Context) {
	ctx := c.Request.Context()
	listID, err := uuid.Parse(c.Param("list_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid list id"))
		return
	}

	var req createCustomFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	if err := fields.ValidateConfigForType(req.FieldType, req.Config); err != nil {
		respondError(c, err)
		return
	}

	exists, err := h.customFields.ExistsByName(ctx, listID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	if exists {
		respondError(c, apperr.New(apperr.KindDuplicateName, "a field named \""+req.Name+"\" already exists in this list"))
		return
	}

	field := models.NewCustomField(listID, req.Name, req.FieldType, req.Config)
	if err := h.customFields.Create(ctx, field); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customFieldToDTO(field))
}

type updateCustomFieldRequest struct {
	Name   string          `json:"name" binding:"required"`
	Config json.RawMessage `json:"config"`
}

func (h *Handlers) UpdateCustomField(c *gin.Context) {
	ctx := c.Request.Context()
	fieldID, err := uuid.Parse(c.Param("field_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid field id"))
		return
	}

	field, err := h.customFields.GetByID(ctx, fieldID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "custom field", fieldID.String()))
		return
	}

	var req updateCustomFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	if req.Config != nil {
		if err := fields.ValidateConfigForType(field.FieldType, req.Config); err != nil {
			respondError(c, err)
			return
		}
		if changes, err := fields.DetectNarrowing(field.FieldType, field.Config, req.Config); err != nil {
			respondError(c, err)
			return
		} else if len(changes) > 0 {
			details := map[string]interface{}{"narrowing_changes": changes}
			respondError(c, apperr.WithDetails(apperr.KindValidation,
				"config change narrows existing values; confirm explicitly", details))
			return
		}
		field.Config = req.Config
	}

	if req.Name != field.Name {
		exists, err := h.customFields.ExistsByName(ctx, field.ListID, req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		if exists {
			respondError(c, apperr.New(apperr.KindDuplicateName, "a field named \""+req.Name+"\" already exists in this list"))
			return
		}
		field.Name = req.Name
	}

	if err := h.customFields.Update(ctx, field); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customFieldToDTO(field))
}

// DeleteCustomField handles DELETE /lists/:list_id/custom-fields/:field_id.
// Deletion is blocked with field_in_use if any schema still lists the field
// as a member (spec.md §7).
func (h *Handlers) DeleteCustomField(c *gin.Context) {
	ctx := c.Request.Context()
	listID, err := uuid.Parse(c.Param("list_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid list id"))
		return
	}
	fieldID, err := uuid.Parse(c.Param("field_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid field id"))
		return
	}

	referencing, err := h.schemasReferencingField(ctx, listID, fieldID)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(referencing) > 0 {
		respondError(c, apperr.WithDetails(apperr.KindFieldInUse,
			"field is still referenced by one or more schemas",
			map[string]interface{}{"schemas": referencing}))
		return
	}

	if err := h.customFields.Delete(ctx, fieldID); err != nil {
		respondError(c, notFoundOrWrap(err, "custom field", fieldID.String()))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) schemasReferencingField(ctx context.Context, listID, fieldID uuid.UUID) ([]string, error) {
	schemas, err := h.schemas.ListByListID(ctx, listID)
	if err != nil {
		return nil, err
	}

	var referencing []string
	for _, s := range schemas {
		members, err := h.schemas.ListFields(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if m.FieldID == fieldID {
				referencing = append(referencing, s.Name)
				break
			}
		}
	}
	return referencing, nil
}

type checkDuplicateRequest struct {
	Name string `json:"name" binding:"required"`
}

type checkDuplicateResponse struct {
	Exists bool            `json:"exists"`
	Field  *CustomFieldDTO `json:"field,omitempty"`
}

// CheckDuplicateField handles POST /lists/:list_id/custom-fields/check-duplicate.
func (h *Handlers) CheckDuplicateField(c *gin.Context) {
	ctx := c.Request.Context()
	listID, err := uuid.Parse(c.Param("list_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid list id"))
		return
	}

	var req checkDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	exists, err := h.customFields.ExistsByName(ctx, listID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	if !exists {
		c.JSON(http.StatusOK, checkDuplicateResponse{Exists: false})
		return
	}

	all, err := h.customFields.ListByListID(ctx, listID)
	if err != nil {
		respondError(c, err)
		return
	}
	for _, f := range all {
		if strings.EqualFold(f.Name, req.Name) {
			dto := customFieldToDTO(f)
			c.JSON(http.StatusOK, checkDuplicateResponse{Exists: true, Field: &dto})
			return
		}
	}
	c.JSON(http.StatusOK, checkDuplicateResponse{Exists: true})
}
