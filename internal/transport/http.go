package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/demobox/internal/domain/activity"
	"github.com/rpggio/demobox/internal/domain/preference"
	"github.com/rpggio/demobox/internal/domain/project"
	"github.com/rpggio/demobox/internal/domain/sandbox"
)

// SandboxService serves guest demo sessions.
type SandboxService interface {
	Start(ctx context.Context) (*sandbox.Snapshot, error)
	Projects(ctx context.Context, sessionID string) ([]project.Project, error)
	Project(ctx context.Context, sessionID, projectID string) (*project.Project, error)
	Edit(ctx context.Context, sessionID, projectID string, patch project.Patch) (*project.Project, error)
	Activity(ctx context.Context, sessionID string, opts activity.ListOptions) ([]activity.Entry, error)
	Reset(ctx context.Context, sessionID string) ([]project.Project, error)
	End(ctx context.Context, sessionID string) error
}

// PreferenceService serves signed-in users' theme preference.
type PreferenceService interface {
	Get(ctx context.Context, userID string) (*preference.Preference, error)
	Set(ctx context.Context, userID string, theme preference.Theme) (*preference.Preference, error)
}

// Deps are the handlers and services mounted by NewServer.
type Deps struct {
	Sandbox     SandboxService
	Preferences PreferenceService
	// Auth guards the preference routes. MCP authenticates inside its own middleware.
	Auth    func(http.Handler) http.Handler
	MCP     http.Handler
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	sandbox     SandboxService
	preferences PreferenceService
}

// NewServer creates an HTTP server router with middleware.
func NewServer(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	srv := &Server{sandbox: deps.Sandbox, preferences: deps.Preferences}

	r.Get("/health", srv.handleHealth)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	if deps.Sandbox != nil {
		r.Route("/api/demo", func(r chi.Router) {
			r.Post("/sessions", srv.handleStartDemo)

			r.Group(func(r chi.Router) {
				r.Use(SessionMiddleware)
				r.Get("/projects", srv.handleListProjects)
				r.Get("/projects/{projectID}", srv.handleGetProject)
				r.Patch("/projects/{projectID}", srv.handleEditProject)
				r.Get("/activity", srv.handleListActivity)
				r.Post("/reset", srv.handleReset)
				r.Delete("/sessions/current", srv.handleEndDemo)
			})
		})
	}

	r.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth)
		}
		if deps.Preferences != nil {
			r.Get("/api/preferences/theme", srv.handleGetTheme)
			r.Put("/api/preferences/theme", srv.handleSetTheme)
		}
	})

	if deps.MCP != nil {
		r.Handle("/mcp", deps.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStartDemo(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sandbox.Start(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := SessionIDFromContext(r.Context())
	projects, err := s.sandbox.Projects(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := SessionIDFromContext(r.Context())
	p, err := s.sandbox.Project(r.Context(), sessionID, chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleEditProject(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := SessionIDFromContext(r.Context())

	var patch project.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.sandbox.Edit(r.Context(), sessionID, chi.URLParam(r, "projectID"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := SessionIDFromContext(r.Context())

	opts := activity.ListOptions{ProjectID: r.URL.Query().Get("project_id")}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, r, fmt.Errorf("%w: invalid limit %q", ErrBadRequest, v))
			return
		}
		opts.Limit = limit
	}

	entries, err := s.sandbox.Activity(r.Context(), sessionID, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": entries})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := SessionIDFromContext(r.Context())
	projects, err := s.sandbox.Reset(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleEndDemo(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := SessionIDFromContext(r.Context())
	if err := s.sandbox.End(r.Context(), sessionID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type themeRequest struct {
	Theme preference.Theme `json:"theme"`
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, ErrUnauthorized)
		return
	}
	pref, err := s.preferences.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, ErrUnauthorized)
		return
	}

	var req themeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	pref, err := s.preferences.Set(r.Context(), userID, req.Theme)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
