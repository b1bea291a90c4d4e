package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	"github.com/SscSPs/sheet_dashboard/internal/core/pages"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/SscSPs/sheet_dashboard/internal/dto"
	"github.com/SscSPs/sheet_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

type pageHandler struct {
	registry *pages.Registry
	settings portssvc.SettingsReaderSvc
}

func registerPageRoutes(rg *gin.RouterGroup, registry *pages.Registry, settings portssvc.SettingsReaderSvc) {
	h := &pageHandler{registry: registry, settings: settings}

	p := rg.Group("/pages")
	{
		p.GET("", h.listPages)
		p.GET("/:pageID", h.renderPage)
		p.POST("/:pageID", h.previewPage)
	}
}

// listPages godoc
// @Summary List pages
// @Tags pages
// @Produce json
// @Success 200 {object} dto.ListPagesResponse
// @Router /pages [get]
func (h *pageHandler) listPages(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ListPagesResponse{Pages: h.registry.List()})
}

// renderPage godoc
// @Summary Render a page
// @Description Loads the effective settings, fetches the data and applies filters, sort, row cap and column selection.
// @Tags pages
// @Produce json
// @Param pageID path string true "Page ID"
// @Success 200 {object} pages.View
// @Failure 404 {object} ErrorResponse
// @Router /pages/{pageID} [get]
func (h *pageHandler) renderPage(c *gin.Context) {
	h.render(c, nil)
}

// previewPage godoc
// @Summary Preview a page with unsaved settings
// @Description Renders the page with the given fields laid over the caller's effective settings, without saving them.
// @Tags pages
// @Accept json
// @Produce json
// @Param pageID path string true "Page ID"
// @Param settings body domain.PageSettings true "Settings to preview"
// @Success 200 {object} pages.View
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /pages/{pageID} [post]
func (h *pageHandler) previewPage(c *gin.Context) {
	pageID := c.Param("pageID")
	if _, err := h.registry.Lookup(pageID); err != nil {
		respondError(c, err, "Page not found")
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "Invalid settings", err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	base, err := h.settings.LoadSettings(c.Request.Context(), userID, pageID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Preview starts from defaults", slog.String("error", err.Error()))
	}
	overrides, err := base.Patch(body)
	if err != nil {
		badRequest(c, "Invalid settings", err)
		return
	}
	h.render(c, &overrides)
}

func (h *pageHandler) render(c *gin.Context, overrides *domain.PageSettings) {
	pageID := c.Param("pageID")
	logger := middleware.GetLoggerFromContext(c).With(slog.String("page_id", pageID))

	page, err := h.registry.Lookup(pageID)
	if err != nil {
		respondError(c, err, "Page not found")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	view, err := page.Render(c.Request.Context(), &pages.RenderContext{UserID: userID, Overrides: overrides})
	if err != nil {
		respondError(c, err, "Failed to render page")
		return
	}

	if sess, ok := middleware.GetSessionFromContext(c); ok {
		sess.CurrentPage = pageID
	}
	logger.Debug("Page rendered", slog.Int("messages", len(view.Messages)))
	c.JSON(http.StatusOK, view)
}
