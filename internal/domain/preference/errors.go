package preference

import "errors"

var (
	// ErrInvalidTheme indicates a theme outside the allowed set.
	ErrInvalidTheme = errors.New("invalid theme")
	// ErrInvalidInput indicates a missing user.
	ErrInvalidInput = errors.New("invalid preference input")
)
