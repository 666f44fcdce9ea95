package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/demobox/internal/domain/preference"
	"github.com/rpggio/demobox/internal/repository"
)

// PreferenceRepository implements preference.Repository for SQLite
type PreferenceRepository struct {
	db *DB
}

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get retrieves a user's preference
func (r *PreferenceRepository) Get(ctx context.Context, userID string) (*preference.Preference, error) {
	query := `
		SELECT user_id, theme, updated_at
		FROM preferences
		WHERE user_id = ?
	`

	var pref preference.Preference
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&pref.UserID,
		&pref.Theme,
		&pref.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}

	return &pref, nil
}

// Upsert inserts or replaces a user's preference
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *preference.Preference) error {
	updatedAt := pref.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO preferences (user_id, theme, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			theme = excluded.theme,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, pref.UserID, string(pref.Theme), updatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: theme %q", repository.ErrInvalidInput, pref.Theme)
		}
		return fmt.Errorf("failed to save preference: %w", err)
	}

	pref.UpdatedAt = updatedAt
	return nil
}
