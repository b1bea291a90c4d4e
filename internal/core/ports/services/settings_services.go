package services

import (
	"context"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
)

// SettingsReaderSvc resolves effective settings. Loads always return usable
// settings; a non-nil error only says why defaults were served instead.
type SettingsReaderSvc interface {
	LoadSettings(ctx context.Context, userID, pageID string) (domain.PageSettings, error)
	LoadAllSettings(ctx context.Context, userID string) (map[string]domain.PageSettings, error)
}

// SettingsWriterSvc persists settings for an authenticated user.
type SettingsWriterSvc interface {
	SaveSettings(ctx context.Context, userID, pageID string, settings domain.PageSettings) error
}

// SettingsSvcFacade combines settings reads and writes.
type SettingsSvcFacade interface {
	SettingsReaderSvc
	SettingsWriterSvc
	// ValidateSettings normalizes and checks settings without storing them.
	ValidateSettings(settings *domain.PageSettings) error
}
