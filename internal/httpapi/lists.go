package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/apperr"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// createListRequest is the body of POST /lists. A list must belong to a
// user before anything nested under it (videos, tags, schemas) can exist.
type createListRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Name   string    `json:"name" binding:"required"`
}

func (h *Handlers) CreateList(c *gin.Context) {
	var req createListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	list := models.NewList(req.UserID, req.Name)
	if err := h.lists.Create(c.Request.Context(), list); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listToDTO(list))
}

func (h *Handlers) ListLists(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		respondError(c, apperr.Validation("user_id query parameter is required"))
		return
	}

	lists, err := h.lists.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	dtos := make([]ListDTO, 0, len(lists))
	for _, l := range lists {
		dtos = append(dtos, listToDTO(l))
	}
	c.JSON(http.StatusOK, dtos)
}

func (h *Handlers) GetList(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("list_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid list id"))
		return
	}

	list, err := h.lists.GetByID(c.Request.Context(), listID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "list", listID.String()))
		return
	}
	c.JSON(http.StatusOK, listToDTO(list))
}

func (h *Handlers) DeleteList(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("list_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid list id"))
		return
	}

	if err := h.lists.Delete(c.Request.Context(), listID); err != nil {
		respondError(c, notFoundOrWrap(err, "list", listID.String()))
		return
	}
	c.Status(http.StatusNoContent)
}
