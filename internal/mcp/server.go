package mcp

import (
	"context"
	"log/slog"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/demobox/internal/domain/activity"
	"github.com/rpggio/demobox/internal/domain/preference"
	"github.com/rpggio/demobox/internal/domain/project"
	"github.com/rpggio/demobox/internal/domain/sandbox"
)

// DefaultUserID is the user when authentication is off.
const DefaultUserID = "default"

// SandboxService defines guest demo operations needed by MCP.
type SandboxService interface {
	Start(ctx context.Context) (*sandbox.Snapshot, error)
	Projects(ctx context.Context, sessionID string) ([]project.Project, error)
	Edit(ctx context.Context, sessionID, projectID string, patch project.Patch) (*project.Project, error)
	Activity(ctx context.Context, sessionID string, opts activity.ListOptions) ([]activity.Entry, error)
	Reset(ctx context.Context, sessionID string) ([]project.Project, error)
	End(ctx context.Context, sessionID string) error
}

// PreferenceService defines theme operations needed by MCP.
type PreferenceService interface {
	Get(ctx context.Context, userID string) (*preference.Preference, error)
	Set(ctx context.Context, userID string, theme preference.Theme) (*preference.Preference, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Sandbox     SandboxService
	Preferences PreferenceService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      UserResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "demobox",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local only, so it never authenticates.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(DefaultUserID))
	}
	server.AddReceivingMiddleware(demoSessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}

// NewHTTPHandler serves server over streamable HTTP.
func NewHTTPHandler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, nil)
}
