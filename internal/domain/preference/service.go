package preference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/demobox/internal/repository"
)

// Service handles theme preference sync.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new preference service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Get returns the user's preference, or the default theme if none is stored.
func (s *Service) Get(ctx context.Context, userID string) (*Preference, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}

	pref, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &Preference{UserID: userID, Theme: DefaultTheme}, nil
		}
		return nil, fmt.Errorf("getting preference: %w", err)
	}
	return pref, nil
}

// Set validates and stores the user's theme.
func (s *Service) Set(ctx context.Context, userID string, theme Theme) (*Preference, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	if !theme.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}

	pref := &Preference{
		UserID:    userID,
		Theme:     theme,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, pref); err != nil {
		return nil, fmt.Errorf("saving preference: %w", err)
	}

	s.logger.DebugContext(ctx, "theme preference saved", "user_id", userID, "theme", theme)
	return pref, nil
}
