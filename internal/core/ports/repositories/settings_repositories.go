package repositories

import "context"

// SettingsRepositoryFacade is a byte-oriented key-value store keyed by (user, page).
// Payloads are opaque JSON documents; decoding and defaulting happen in the service.
type SettingsRepositoryFacade interface {
	// FindSettings returns the stored payload or apperrors.ErrNotFound.
	FindSettings(ctx context.Context, userID, pageID string) ([]byte, error)

	// UpsertSettings replaces the payload for the key atomically.
	UpsertSettings(ctx context.Context, userID, pageID string, payload []byte) error

	// ListSettings returns every stored payload of a user keyed by page id.
	ListSettings(ctx context.Context, userID string) (map[string][]byte, error)
}
