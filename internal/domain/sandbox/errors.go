package sandbox

import "errors"

var (
	// ErrSessionNotFound indicates the demo session doesn't exist or has expired.
	ErrSessionNotFound = errors.New("demo session not found")
	// ErrSessionLimit indicates the registry is full.
	ErrSessionLimit = errors.New("too many demo sessions")
	// ErrRateLimited indicates the session is editing too quickly.
	ErrRateLimited = errors.New("demo session rate limited")
)
