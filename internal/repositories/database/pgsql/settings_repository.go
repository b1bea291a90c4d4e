package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	portsrepo "github.com/SscSPs/sheet_dashboard/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSettingsRepository struct {
	BaseRepository
}

func newPgxSettingsRepository(db *pgxpool.Pool) portsrepo.SettingsRepositoryFacade {
	return &PgxSettingsRepository{BaseRepository{Pool: db}}
}

var _ portsrepo.SettingsRepositoryFacade = (*PgxSettingsRepository)(nil)

func (r *PgxSettingsRepository) FindSettings(ctx context.Context, userID, pageID string) ([]byte, error) {
	var payload []byte
	err := r.Pool.QueryRow(ctx,
		`SELECT payload FROM page_settings WHERE user_id = $1 AND page_id = $2;`,
		userID, pageID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load settings for page %s: %w", pageID, storageError(err))
	}
	return payload, nil
}

// UpsertSettings writes the whole record in a single statement, so concurrent
// writers to the same key never interleave fields.
func (r *PgxSettingsRepository) UpsertSettings(ctx context.Context, userID, pageID string, payload []byte) error {
	query := `
        INSERT INTO page_settings (user_id, page_id, payload, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (user_id, page_id) DO UPDATE SET
            payload = EXCLUDED.payload,
            updated_at = EXCLUDED.updated_at;
    `
	if _, err := r.Pool.Exec(ctx, query, userID, pageID, payload); err != nil {
		return fmt.Errorf("failed to save settings for page %s: %w", pageID, storageError(err))
	}
	return nil
}

func (r *PgxSettingsRepository) ListSettings(ctx context.Context, userID string) (map[string][]byte, error) {
	rows, err := r.Pool.Query(ctx, `SELECT page_id, payload FROM page_settings WHERE user_id = $1;`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", storageError(err))
	}
	defer rows.Close()

	out := map[string][]byte{}
	for rows.Next() {
		var pageID string
		var payload []byte
		if err := rows.Scan(&pageID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan settings row: %w", storageError(err))
		}
		out[pageID] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings rows: %w", storageError(err))
	}
	return out, nil
}
