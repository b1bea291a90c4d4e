package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	"github.com/SscSPs/sheet_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps err onto the HTTP status of its apperrors class. Server-side
// failures are logged and answered with fallback; client errors echo err.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromContext(c)
	status := apperrors.StatusCode(err)
	if status == http.StatusOK {
		status = http.StatusInternalServerError
	}

	msg := err.Error()
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		msg = "Invalid username or password"
	case errors.Is(err, apperrors.ErrInvalidOrExpiredToken):
		msg = "Invalid or expired reset token"
	case errors.As(err, &appErr) && appErr.Message != "":
		msg = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()), slog.Int("status", status))
		msg = fallback
	} else {
		logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

func badRequest(c *gin.Context, msg string, err error) {
	attrs := []any{}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		msg += ": " + err.Error()
	}
	middleware.GetLoggerFromContext(c).Warn("Rejected request body", attrs...)
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
