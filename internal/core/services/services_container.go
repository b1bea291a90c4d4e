package services

import (
	portsrepo "github.com/SscSPs/sheet_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/SscSPs/sheet_dashboard/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// repos.SheetSource may be nil, in which case pages are rendered from sample.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, sample portsrepo.SheetSource) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Auth: NewAuthService(repos.UserRepo, repos.ResetTokenRepo,
			WithResetTokenTTL(cfg.PasswordResetTTL),
		),
		Token:    NewTokenService(cfg),
		Settings: NewSettingsService(repos.SettingsRepo),
		Sheet: NewSheetService(repos.SheetSource, sample,
			WithSheetCache(cfg.SheetsCacheSize, cfg.SheetsCacheTTL),
			WithFetchTimeout(cfg.SheetsFetchTimeout),
		),
		Notifier: NewLogResetNotifier(cfg.FrontendBaseURL, !cfg.IsProduction),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AuthSvcFacade     = (*authService)(nil)
	_ portssvc.TokenSvcFacade    = (*tokenService)(nil)
	_ portssvc.SettingsSvcFacade = (*settingsService)(nil)
	_ portssvc.SheetSvcFacade    = (*sheetService)(nil)
	_ portssvc.ResetNotifier     = (*logResetNotifier)(nil)
)
