package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/demobox/internal/domain/preference"
	"github.com/rpggio/demobox/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestPreferenceRepository_GetMissing(t *testing.T) {
	repo := NewPreferenceRepository(NewTestDB(t))

	_, err := repo.Get(context.Background(), "nobody")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPreferenceRepository_Upsert(t *testing.T) {
	db := NewTestDB(t)
	repo := NewPreferenceRepository(db)
	ctx := context.Background()

	first := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	err := repo.Upsert(ctx, &preference.Preference{UserID: "u1", Theme: preference.ThemeDark, UpdatedAt: first})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, preference.ThemeDark, got.Theme)
	require.True(t, got.UpdatedAt.Equal(first))

	second := first.Add(time.Hour)
	err = repo.Upsert(ctx, &preference.Preference{UserID: "u1", Theme: preference.ThemeLight, UpdatedAt: second})
	require.NoError(t, err)

	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, preference.ThemeLight, got.Theme)
	require.True(t, got.UpdatedAt.Equal(second))

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM preferences`).Scan(&rows))
	require.Equal(t, 1, rows)
}

func TestPreferenceRepository_UpsertStampsTime(t *testing.T) {
	repo := NewPreferenceRepository(NewTestDB(t))

	pref := &preference.Preference{UserID: "u1", Theme: preference.ThemeSystem}
	require.NoError(t, repo.Upsert(context.Background(), pref))
	require.False(t, pref.UpdatedAt.IsZero())
}

func TestPreferenceRepository_UpsertInvalidTheme(t *testing.T) {
	repo := NewPreferenceRepository(NewTestDB(t))

	err := repo.Upsert(context.Background(), &preference.Preference{UserID: "u1", Theme: "sepia"})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestPreferenceService_WithSQLite(t *testing.T) {
	svc := preference.NewService(NewPreferenceRepository(NewTestDB(t)), nil)
	ctx := context.Background()

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, preference.DefaultTheme, got.Theme)

	_, err = svc.Set(ctx, "u1", preference.ThemeDark)
	require.NoError(t, err)

	got, err = svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, preference.ThemeDark, got.Theme)
}
