package middleware

import (
	"fmt"
	"strings"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// RequireAuth rejects anonymous writes with apperrors.ErrPermissionDenied (403).
// A bad bearer token is already answered with 401 by SessionManager.Load,
// which must run first.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserIDFromContext(c); !ok {
			GetLoggerFromContext(c).Warn("Write attempted without login", "method", c.Request.Method, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(apperrors.StatusCode(apperrors.ErrPermissionDenied), gin.H{"error": "Permission denied: login required"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", fmt.Errorf("%w: authorization header format must be Bearer {token}", apperrors.ErrUnauthorized)
	}
	return parts[1], nil
}
