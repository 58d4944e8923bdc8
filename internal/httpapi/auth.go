package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

const (
	headerAPIKey = "X-API-Key"
	headerAuth   = "Authorization"
	bearerPrefix = "Bearer "
)

// APIKeyAuth gates every route behind a statically configured set of API
// keys, checked in constant time. No keys configured means every request is
// rejected, not waved through.
type APIKeyAuth struct {
	apiKeys map[string]bool
}

// NewAPIKeyAuth builds the middleware. keys with an empty string are ignored.
func NewAPIKeyAuth(keys []string) *APIKeyAuth {
	keyMap := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k != "" {
			keyMap[k] = true
		}
	}
	return &APIKeyAuth{apiKeys: keyMap}
}

// Middleware checks X-API-Key first, then Authorization: Bearer.
func (a *APIKeyAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(headerAPIKey)
		if key == "" {
			if auth := c.GetHeader(headerAuth); strings.HasPrefix(auth, bearerPrefix) {
				key = strings.TrimPrefix(auth, bearerPrefix)
			}
		}

		if !a.isValid(key) {
			logger.Log.Warn("unauthorized request",
				zap.String("path", c.Request.URL.Path), zap.String("method", c.Request.Method))
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("unauthorized", "missing or invalid API key", c.Request.URL.Path, time.Now()))
			return
		}

		c.Next()
	}
}

func (a *APIKeyAuth) isValid(key string) bool {
	if key == "" || len(a.apiKeys) == 0 {
		return false
	}
	for valid := range a.apiKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(valid)) == 1 {
			return true
		}
	}
	return false
}
