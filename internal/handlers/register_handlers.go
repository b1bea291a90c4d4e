package handlers

import (
	"fmt"
	"net/http"

	"github.com/SscSPs/sheet_dashboard/cmd/docs"
	"github.com/SscSPs/sheet_dashboard/internal/core/pages"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/SscSPs/sheet_dashboard/internal/middleware"
	"github.com/SscSPs/sheet_dashboard/internal/platform/config"
	"github.com/SscSPs/sheet_dashboard/internal/utils"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	sessions *middleware.SessionManager,
	posthog *utils.PosthogClientWrapper,
) error {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	if err := setupAPIV1Routes(r, cfg, services, sessions, posthog); err != nil {
		return err
	}

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group. Every route gets a session;
// routes that write require an authenticated one.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	sessions *middleware.SessionManager,
	posthog *utils.PosthogClientWrapper,
) error {
	authLimiter, err := middleware.NewIPLimiter(cfg.LoginRateLimit)
	if err != nil {
		return fmt.Errorf("login rate limit: %w", err)
	}
	registry := pages.NewRegistry(services.Settings, services.Sheet)

	v1 := r.Group("/api/v1",
		middleware.SessionCookies(cfg.SessionCookieName, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction),
		sessions.Load(),
	)

	registerAuthRoutes(v1, newAuthHandler(services, sessions), authLimiter)
	registerPageRoutes(v1, registry, services.Settings)
	registerSettingsRoutes(v1, services.Settings, registry, posthog)
	registerDataRoutes(v1, services.Sheet)
	return nil
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
