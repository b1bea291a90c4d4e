package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	"github.com/SscSPs/sheet_dashboard/internal/core/defaults"
	"github.com/SscSPs/sheet_dashboard/internal/core/pages"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/SscSPs/sheet_dashboard/internal/dto"
	"github.com/SscSPs/sheet_dashboard/internal/middleware"
	"github.com/SscSPs/sheet_dashboard/internal/utils"
	"github.com/gin-gonic/gin"
)

type settingsHandler struct {
	settings portssvc.SettingsSvcFacade
	registry *pages.Registry
	posthog  *utils.PosthogClientWrapper
}

func registerSettingsRoutes(rg *gin.RouterGroup, settings portssvc.SettingsSvcFacade, registry *pages.Registry, posthog *utils.PosthogClientWrapper) {
	h := &settingsHandler{settings: settings, registry: registry, posthog: posthog}

	s := rg.Group("/settings")
	{
		s.GET("", h.listSettings)
		s.GET("/:pageID", h.getSettings)
		s.PUT("/:pageID", middleware.RequireAuth(), h.saveSettings)
	}
}

// dataPage rejects ids that do not name a page with its own settings.
func (h *settingsHandler) dataPage(c *gin.Context) (string, bool) {
	pageID := c.Param("pageID")
	if _, err := h.registry.Lookup(pageID); err != nil || pageID == defaults.PageSettings {
		respondError(c, fmt.Errorf("settings for page %q: %w", pageID, apperrors.ErrNotFound), "Page not found")
		return "", false
	}
	return pageID, true
}

// listSettings godoc
// @Summary Effective settings of every data page
// @Tags settings
// @Produce json
// @Success 200 {object} dto.AllSettingsResponse
// @Security BearerAuth
// @Router /settings [get]
func (h *settingsHandler) listSettings(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	all, err := h.settings.LoadAllSettings(c.Request.Context(), userID)
	resp := dto.AllSettingsResponse{Pages: all, ReadOnly: userID == ""}
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Serving default settings", slog.String("error", err.Error()))
		resp.Warning = fallbackWarning(err)
	}
	c.JSON(http.StatusOK, resp)
}

// getSettings godoc
// @Summary Effective settings of one page
// @Description Stored settings merged over the page defaults. Anonymous visitors get the defaults.
// @Tags settings
// @Produce json
// @Param pageID path string true "Page ID"
// @Success 200 {object} dto.SettingsResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /settings/{pageID} [get]
func (h *settingsHandler) getSettings(c *gin.Context) {
	pageID, ok := h.dataPage(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)
	settings, err := h.settings.LoadSettings(c.Request.Context(), userID, pageID)
	resp := dto.SettingsResponse{PageID: pageID, Settings: settings, ReadOnly: userID == ""}
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Serving default settings", slog.String("page_id", pageID), slog.String("error", err.Error()))
		resp.Warning = fallbackWarning(err)
	}
	c.JSON(http.StatusOK, resp)
}

// saveSettings godoc
// @Summary Save settings of one page
// @Description Replaces the stored settings for the current user and page.
// @Tags settings
// @Accept json
// @Produce json
// @Param pageID path string true "Page ID"
// @Param settings body domain.PageSettings true "Settings"
// @Success 200 {object} dto.SettingsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Invalid or expired token"
// @Failure 403 {object} ErrorResponse "Not logged in"
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Security BearerAuth
// @Router /settings/{pageID} [put]
func (h *settingsHandler) saveSettings(c *gin.Context) {
	pageID, ok := h.dataPage(c)
	if !ok {
		return
	}
	// fields the body leaves out keep the page defaults
	req := defaults.Resolve(pageID)
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid settings", err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	ctx := c.Request.Context()
	if err := h.settings.SaveSettings(ctx, userID, pageID, req); err != nil {
		respondError(c, err, "Failed to save settings")
		return
	}

	saved, err := h.settings.LoadSettings(ctx, userID, pageID)
	resp := dto.SettingsResponse{PageID: pageID, Settings: saved}
	if err != nil {
		resp.Warning = fallbackWarning(err)
	}
	middleware.PosthogEvent(c, h.posthog, "settings_saved", map[string]any{"page_id": pageID})
	c.JSON(http.StatusOK, resp)
}

func fallbackWarning(err error) string {
	switch apperrors.StatusCode(err) {
	case http.StatusServiceUnavailable:
		return "Settings storage is unavailable; showing defaults."
	default:
		return "Saved settings could not be read; showing defaults."
	}
}
