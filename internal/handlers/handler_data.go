package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/SscSPs/sheet_dashboard/internal/dto"
	"github.com/gin-gonic/gin"
)

func registerDataRoutes(rg *gin.RouterGroup, sheets portssvc.SheetSvcFacade) {
	rg.POST("/data/refresh", refreshData(sheets))
}

// refreshData godoc
// @Summary Clear the data cache
// @Description Drops every cached sheet fetch so the next page render reads fresh data.
// @Tags data
// @Produce json
// @Success 200 {object} dto.RefreshResponse
// @Router /data/refresh [post]
func refreshData(sheets portssvc.SheetSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		sheets.Invalidate(c.Request.Context())
		c.JSON(http.StatusOK, dto.RefreshResponse{Message: "Data cache cleared! Loading fresh data..."})
	}
}
