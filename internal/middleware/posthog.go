package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/sheet_dashboard/internal/utils"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains route prefixes that should not be tracked by PostHog
var pathsToSkip = []string{"/health", "/swagger"}

// PosthogMiddleware tracks successful API calls. Anonymous visitors are
// identified by their session id.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() || skipTracking(c.Request.URL.Path) {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		// "/api/v1/pages/:pageID" -> "api_v1_pages_:pageID"
		eventName := strings.ReplaceAll(strings.TrimPrefix(c.FullPath(), "/"), "/", "_")
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, param := range c.Params {
				params[param.Key] = param.Value
			}
			props["params"] = params
		}

		if distinctID, ok := distinctID(c); ok {
			posthogClient.Enqueue(distinctID, eventName, props)
		}
	}
}

// PosthogEvent sends a custom event from a handler.
func PosthogEvent(c *gin.Context, posthogClient *utils.PosthogClientWrapper, eventName string, properties map[string]any) {
	if !posthogClient.IsInitialized() {
		return
	}
	id, ok := distinctID(c)
	if !ok {
		return
	}
	if properties == nil {
		properties = make(map[string]any)
	}
	properties["method"] = c.Request.Method
	properties["path"] = c.Request.URL.Path
	posthogClient.Enqueue(id, eventName, properties)
}

func distinctID(c *gin.Context) (string, bool) {
	if userID, ok := GetUserIDFromContext(c); ok {
		return userID, true
	}
	if sess, ok := GetSessionFromContext(c); ok {
		return "session:" + sess.ID, true
	}
	return "", false
}

func skipTracking(path string) bool {
	for _, prefix := range pathsToSkip {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
