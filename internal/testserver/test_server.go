// Package testserver runs the full HTTP stack against an in-memory database.
package testserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpggio/demobox/internal/domain/preference"
	"github.com/rpggio/demobox/internal/domain/sandbox"
	"github.com/rpggio/demobox/internal/mcp"
	"github.com/rpggio/demobox/internal/sqlite"
	"github.com/rpggio/demobox/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server  *httptest.Server
	DB      *sqlite.DB
	Sandbox *sandbox.Service
	Token   string
	UserID  string

	apiKeys *sqlite.APIKeyRepository
}

// New starts a server with auth enabled and token registered for userID.
func New(t *testing.T, token, userID string) *TestServer {
	t.Helper()
	return NewWithConfig(t, token, userID, sandbox.Config{})
}

// NewWithConfig is New with explicit sandbox limits.
func NewWithConfig(t *testing.T, token, userID string, cfg sandbox.Config) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	registry := prometheus.NewRegistry()
	sandboxSvc := sandbox.NewService(cfg, nil, sandbox.WithMetrics(sandbox.NewMetrics(registry)))
	preferenceSvc := preference.NewService(sqlite.NewPreferenceRepository(db), nil)
	apiKeys := sqlite.NewAPIKeyRepository(db)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Sandbox:     sandboxSvc,
			Preferences: preferenceSvc,
		},
		Resolver:      apiKeys,
		AuthEnabled:   true,
		TransportMode: "http",
	})

	server := httptest.NewServer(transport.NewServer(transport.Deps{
		Sandbox:     sandboxSvc,
		Preferences: preferenceSvc,
		Auth:        transport.AuthMiddleware(apiKeys),
		MCP:         mcp.NewHTTPHandler(mcpServer),
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}))

	ts := &TestServer{
		Server:  server,
		DB:      db,
		Sandbox: sandboxSvc,
		Token:   token,
		UserID:  userID,
		apiKeys: apiKeys,
	}

	require.NoError(t, ts.AddAPIKey(token, userID))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// AddAPIKey registers another bearer token.
func (ts *TestServer) AddAPIKey(token, userID string) error {
	return ts.apiKeys.Add(context.Background(), token, userID, "test")
}
