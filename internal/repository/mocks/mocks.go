package mocks

import (
	"context"

	"github.com/rpggio/demobox/internal/domain/preference"
	"github.com/stretchr/testify/mock"
)

// PreferenceRepository is a mock for preference.Repository.
type PreferenceRepository struct {
	mock.Mock
}

func (m *PreferenceRepository) Get(ctx context.Context, userID string) (*preference.Preference, error) {
	args := m.Called(ctx, userID)
	if pref, ok := args.Get(0).(*preference.Preference); ok {
		return pref, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PreferenceRepository) Upsert(ctx context.Context, pref *preference.Preference) error {
	args := m.Called(ctx, pref)
	return args.Error(0)
}

// APIKeyRepository is a mock for the sqlite API key store.
type APIKeyRepository struct {
	mock.Mock
}

func (m *APIKeyRepository) Add(ctx context.Context, token, userID, description string) error {
	args := m.Called(ctx, token, userID, description)
	return args.Error(0)
}

func (m *APIKeyRepository) ResolveUser(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *APIKeyRepository) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
