package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/adapters/sheets"
	"github.com/SscSPs/sheet_dashboard/internal/core/defaults"
	portsrepo "github.com/SscSPs/sheet_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/sheet_dashboard/internal/core/services"
	"github.com/SscSPs/sheet_dashboard/internal/core/session"
	"github.com/SscSPs/sheet_dashboard/internal/handlers"
	"github.com/SscSPs/sheet_dashboard/internal/middleware"
	"github.com/SscSPs/sheet_dashboard/internal/platform/config"
	"github.com/SscSPs/sheet_dashboard/internal/repositories/database/pgsql"
	"github.com/SscSPs/sheet_dashboard/internal/repositories/memory"
	"github.com/SscSPs/sheet_dashboard/internal/utils"
	"github.com/SscSPs/sheet_dashboard/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	memorySessionCapacity = 10000
	shutdownTimeout       = 10 * time.Second
)

// @title Sheet Dashboard API
// @version 1.0
// @description Backend for the spreadsheet dashboard: login flow, per-page settings and filtered sheet views.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defaults.SetSpreadsheetID(cfg.DefaultSpreadsheet)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, dbPool, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	if cfg.GoogleCredentials != "" {
		client, err := sheets.NewClient(ctx, []byte(cfg.GoogleCredentials))
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client, serving sample data", slog.String("error", err.Error()))
		} else {
			repos.SheetSource = client
		}
	}

	sessionStore, closeSessions, err := setupSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize session store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeSessions()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	serviceContainer := services.NewServiceContainer(cfg, repos, sheets.NewSampleSource())
	sessionManager := middleware.NewSessionManager(sessionStore, serviceContainer.Token)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     []string{cfg.FrontendBaseURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.PosthogMiddleware(posthogClient),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer, sessionManager, posthogClient); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
}

// setupRepositories connects to Postgres and applies migrations when a database URL
// is configured. Without one, or when the database is unreachable and
// ENABLE_DB_CHECK is off, users and settings live in memory.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, *pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("No database configured, using in-memory repositories")
		return memory.NewRepositoryProvider(), nil, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.DefaultPoolOptions())
	if err != nil {
		if cfg.EnableDBCheck {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Error("Database unavailable, using in-memory repositories", slog.String("error", err.Error()))
		return memory.NewRepositoryProvider(), nil, nil
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}
	return pgsql.NewRepositoryProvider(dbPool), dbPool, nil
}

func setupSessionStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("Using in-memory session store")
		return session.NewMemoryStore(memorySessionCapacity, cfg.SessionTTL), func() {}, nil
	}
	store, err := session.NewRedisStoreFromURL(ctx, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Using Redis session store")
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close Redis client", slog.String("error", err.Error()))
		}
	}, nil
}
