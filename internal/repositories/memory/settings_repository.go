package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	portsrepo "github.com/SscSPs/sheet_dashboard/internal/core/ports/repositories"
)

type settingsKey struct {
	userID string
	pageID string
}

// SettingsRepository stores immutable payload copies in a sync.Map. A write
// swaps the whole value for its key, so readers see either the old or the new
// record, never a mix.
type SettingsRepository struct {
	records sync.Map // settingsKey -> []byte
}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

var _ portsrepo.SettingsRepositoryFacade = (*SettingsRepository)(nil)

func (r *SettingsRepository) FindSettings(ctx context.Context, userID, pageID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := r.records.Load(settingsKey{userID, pageID})
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return clone(v.([]byte)), nil
}

func (r *SettingsRepository) UpsertSettings(ctx context.Context, userID, pageID string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.records.Store(settingsKey{userID, pageID}, clone(payload))
	return nil
}

func (r *SettingsRepository) ListSettings(ctx context.Context, userID string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := map[string][]byte{}
	r.records.Range(func(k, v any) bool {
		if key := k.(settingsKey); key.userID == userID {
			out[key.pageID] = clone(v.([]byte))
		}
		return true
	})
	return out, nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
