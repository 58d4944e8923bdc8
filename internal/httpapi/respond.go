package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/0ui-labs/youtube-bookmarks/internal/apperr"
	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

// notFoundOrWrap turns a repository's "no rows" sentinel into the
// surface-stable apperr.KindNotFound; any other error passes through
// unchanged for respondError to classify.
func notFoundOrWrap(err error, entity, id string) error {
	if db.IsNotFound(err) {
		return apperr.NotFound(entity, id)
	}
	return err
}

// ErrorResponse is the JSON shape every error path returns, mirroring the
// teacher's models.ErrorResponse field-for-field.
type ErrorResponse struct {
	Timestamp time.Time              `json:"timestamp"`
	Status    int                    `json:"status"`
	Error     string                 `json:"error"`
	Message   string                 `json:"message"`
	Path      string                 `json:"path"`
	Kind      string                 `json:"kind,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

func errorBody(errLabel, message, path string, ts time.Time) ErrorResponse {
	return ErrorResponse{Timestamp: ts, Status: http.StatusUnauthorized, Error: errLabel, Message: message, Path: path}
}

// respondError translates err into the surface-stable JSON shape of spec.md
// §7. An *apperr.Error maps through its Kind's HTTPStatus; anything else is
// an unexpected 500 and logged at Error level rather than Warn.
func respondError(c *gin.Context, err error) {
	path := c.Request.URL.Path

	appErr, ok := apperr.As(err)
	if !ok {
		logger.Log.Error("unhandled error", zap.String("path", path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Timestamp: time.Now(),
			Status:    http.StatusInternalServerError,
			Error:     "internal_error",
			Message:   "an unexpected error occurred",
			Path:      path,
		})
		return
	}

	status := appErr.Kind.HTTPStatus()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if status >= 500 {
		logger.Log.Error("request failed", zap.String("path", path), zap.String("kind", string(appErr.Kind)), zap.Error(err))
	} else {
		logger.Log.Warn("request rejected", zap.String("path", path), zap.String("kind", string(appErr.Kind)), zap.Error(err))
	}

	c.JSON(status, ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     string(appErr.Kind),
		Message:   appErr.Message,
		Path:      path,
		Kind:      string(appErr.Kind),
		Details:   appErr.Details,
	})
}

// PaginatedResponse carries pagination metadata alongside a page of items.
type PaginatedResponse struct {
	Items  interface{} `json:"items"`
	Count  int         `json:"count"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

const (
	defaultLimit = 50
	maxLimit     = 1000
)

func parseLimit(c *gin.Context) int {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func parseOffset(c *gin.Context) int {
	offsetStr := c.Query("offset")
	if offsetStr == "" {
		return 0
	}
	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
