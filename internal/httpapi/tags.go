package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/apperr"
	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

func (h *Handlers) ListTags(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		respondError(c, apperr.Validation("user_id query parameter is required"))
		return
	}

	tags, err := h.tags.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	dtos := make([]TagDTO, 0, len(tags))
	for _, t := range tags {
		dtos = append(dtos, tagToDTO(t))
	}
	c.JSON(http.StatusOK, dtos)
}

type createTagRequest struct {
	UserID      uuid.UUID  `json:"user_id" binding:"required"`
	Name        string     `json:"name" binding:"required"`
	Color       string     `json:"color"`
	IsVideoType bool       `json:"is_video_type"`
	SchemaID    *uuid.UUID `json:"schema_id"`
}

func (h *Handlers) CreateTag(c *gin.Context) {
	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	tag := models.NewTag(req.UserID, req.Name, req.Color, req.IsVideoType, req.SchemaID)
	if err := h.tags.Create(c.Request.Context(), tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tagToDTO(tag))
}

type updateTagRequest struct {
	Name        string     `json:"name" binding:"required"`
	Color       string     `json:"color"`
	IsVideoType bool       `json:"is_video_type"`
	SchemaID    *uuid.UUID `json:"schema_id"`
}

func (h *Handlers) UpdateTag(c *gin.Context) {
	ctx := c.Request.Context()
	tagID, err := uuid.Parse(c.Param("tag_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid tag id"))
		return
	}

	tag, err := h.tags.GetByID(ctx, tagID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "tag", tagID.String()))
		return
	}

	var req updateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	tag.Name = req.Name
	tag.Color = req.Color
	tag.IsVideoType = req.IsVideoType
	tag.SchemaID = req.SchemaID

	if err := h.tags.Update(ctx, tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tagToDTO(tag))
}

func (h *Handlers) DeleteTag(c *gin.Context) {
	tagID, err := uuid.Parse(c.Param("tag_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid tag id"))
		return
	}

	if err := h.tags.Delete(c.Request.Context(), tagID); err != nil {
		respondError(c, notFoundOrWrap(err, "tag", tagID.String()))
		return
	}
	c.Status(http.StatusNoContent)
}

// AttachTag handles POST /videos/:id/tags/:tag_id. Attaching a category tag
// (is_video_type=true) enforces the at-most-one-category invariant (spec.md
// §8 invariant 4) and triggers the backup/restore cycle of spec.md §4.12.
func (h *Handlers) AttachTag(c *gin.Context) {
	ctx := c.Request.Context()

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid video id"))
		return
	}
	tagID, err := uuid.Parse(c.Param("tag_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid tag id"))
		return
	}

	tag, err := h.tags.GetByID(ctx, tagID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "tag", tagID.String()))
		return
	}

	if !tag.IsVideoType {
		if err := h.tags.Attach(ctx, videoID, tagID); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	existing, err := h.tags.GetAttachedCategory(ctx, videoID)
	var fromCategoryID uuid.UUID
	var fromCategoryName string
	var fromSchemaID *uuid.UUID
	if err == nil {
		if existing.ID == tagID {
			c.Status(http.StatusNoContent)
			return
		}
		fromCategoryID = existing.ID
		fromCategoryName = existing.Name
		fromSchemaID = existing.SchemaID
		if err := h.tags.Detach(ctx, videoID, existing.ID); err != nil {
			respondError(c, err)
			return
		}
	} else if !db.IsNotFound(err) {
		respondError(c, err)
		return
	}

	if err := h.tags.Attach(ctx, videoID, tagID); err != nil {
		respondError(c, err)
		return
	}

	if err := h.backupMgr.SwitchCategory(ctx, videoID, fromCategoryID, fromCategoryName, fromSchemaID, tagID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handlers) DetachTag(c *gin.Context) {
	ctx := c.Request.Context()

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid video id"))
		return
	}
	tagID, err := uuid.Parse(c.Param("tag_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid tag id"))
		return
	}

	tag, err := h.tags.GetByID(ctx, tagID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "tag", tagID.String()))
		return
	}

	if err := h.tags.Detach(ctx, videoID, tagID); err != nil {
		respondError(c, notFoundOrWrap(err, "tag attachment", tagID.String()))
		return
	}

	if tag.IsVideoType {
		if err := h.backupMgr.SwitchCategory(ctx, videoID, tag.ID, tag.Name, tag.SchemaID, uuid.Nil); err != nil {
			respondError(c, err)
			return
		}
	}

	c.Status(http.StatusNoContent)
}
