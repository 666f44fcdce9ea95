package preference

import "context"

// Repository provides persistence for preferences.
type Repository interface {
	Get(ctx context.Context, userID string) (*Preference, error)
	Upsert(ctx context.Context, pref *Preference) error
}
