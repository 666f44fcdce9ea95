package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// SessionHeader carries the guest demo session ID.
const SessionHeader = "Demo-Session-Id"

// ErrMissingSession indicates a demo request without a session header.
var ErrMissingSession = errors.New("missing demo session id")

type sessionKey struct{}

// SessionIDFromContext returns the demo session ID from context, if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionKey{}).(string)
	return sessionID, ok
}

// SessionMiddleware requires Demo-Session-Id and stores it in context.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(r.Header.Get(SessionHeader))
		if sessionID == "" {
			writeError(w, r, ErrMissingSession)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
