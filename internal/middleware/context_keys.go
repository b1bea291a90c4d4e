package middleware

import (
	"github.com/SscSPs/sheet_dashboard/internal/core/session"
	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the authenticated user's ID in the Gin context.
const userIDKey = contextKey("userID")

const (
	sessionKey    = contextKey("session")
	authMethodKey = contextKey("authMethod")
	destroyedKey  = contextKey("sessionDestroyed")
	freshKey      = contextKey("sessionFresh") // created or rotated by this request
)

// Auth methods recorded under authMethodKey.
const (
	AuthMethodCookie = "cookie"
	AuthMethodBearer = "bearer"
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		if userID, ok := c.Request.Context().Value(userIDKey).(string); ok && userID != "" {
			return userID, true
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetSessionFromContext returns the session loaded by SessionManager.Load.
func GetSessionFromContext(c *gin.Context) (*session.Context, bool) {
	v, exists := c.Get(string(sessionKey))
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Context)
	return sess, ok && sess != nil
}

// GetAuthMethod reports how the current request was authenticated, if at all.
func GetAuthMethod(c *gin.Context) string {
	return c.GetString(string(authMethodKey))
}
