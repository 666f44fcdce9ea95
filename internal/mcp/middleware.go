package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const (
	userIDKey contextKey = iota
	demoSessionIDKey
)

// demoSessionMetaKey names the _meta field that may carry the guest session ID.
const demoSessionMetaKey = "demo_session_id"

// getUserID extracts the signed-in user ID from context.
func getUserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// getDemoSessionID extracts the demo session ID from context.
func getDemoSessionID(ctx context.Context) string {
	v, _ := ctx.Value(demoSessionIDKey).(string)
	return v
}

// UserResolver resolves a user ID from a bearer token.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (string, error)
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver UserResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Protocol handshake carries no identity.
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			userID, err := resolver.ResolveUser(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			if userID == "" {
				return nil, fmt.Errorf("unauthorized: invalid bearer token")
			}

			ctx = context.WithValue(ctx, userIDKey, userID)
			return next(ctx, method, req)
		}
	}
}

// noAuthMiddleware injects a default user when auth is disabled.
func noAuthMiddleware(defaultUser string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx = context.WithValue(ctx, userIDKey, defaultUser)
			return next(ctx, method, req)
		}
	}
}

// demoSessionMiddleware lifts _meta.demo_session_id into context so tools can omit session_id.
func demoSessionMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if sessionID := metaString(req, demoSessionMetaKey); sessionID != "" {
				ctx = context.WithValue(ctx, demoSessionIDKey, sessionID)
			}
			return next(ctx, method, req)
		}
	}
}

// metaString reads a string from request _meta. Some notifications carry typed-nil
// params whose GetMeta panics, hence the recover.
func metaString(req sdkmcp.Request, key string) (value string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			value = ""
		}
	}()
	params := req.GetParams()
	if params == nil {
		return ""
	}
	if meta := params.GetMeta(); meta != nil {
		value, _ = meta[key].(string)
	}
	return value
}
