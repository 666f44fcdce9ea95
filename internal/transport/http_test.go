package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpggio/demobox/internal/domain/activity"
	"github.com/rpggio/demobox/internal/domain/preference"
	"github.com/rpggio/demobox/internal/domain/project"
	"github.com/rpggio/demobox/internal/domain/sandbox"
	"github.com/stretchr/testify/require"
)

type memoryPreferences struct {
	themes map[string]preference.Theme
}

func (m *memoryPreferences) Get(_ context.Context, userID string) (*preference.Preference, error) {
	theme, ok := m.themes[userID]
	if !ok {
		theme = preference.DefaultTheme
	}
	return &preference.Preference{UserID: userID, Theme: theme}, nil
}

func (m *memoryPreferences) Set(_ context.Context, userID string, theme preference.Theme) (*preference.Preference, error) {
	if !theme.Valid() {
		return nil, preference.ErrInvalidTheme
	}
	m.themes[userID] = theme
	return &preference.Preference{UserID: userID, Theme: theme}, nil
}

type testEnv struct {
	server  *httptest.Server
	sandbox *sandbox.Service
}

func newTestEnv(t *testing.T, cfg sandbox.Config) *testEnv {
	t.Helper()
	svc := sandbox.NewService(cfg, nil)
	resolver := &testResolver{tokenToUser: map[string]string{"token": "user1"}}
	server := httptest.NewServer(NewServer(Deps{
		Sandbox:     svc,
		Preferences: &memoryPreferences{themes: map[string]preference.Theme{}},
		Auth:        AuthMiddleware(resolver),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		}),
	}))
	t.Cleanup(server.Close)
	return &testEnv{server: server, sandbox: svc}
}

func (e *testEnv) do(t *testing.T, method, path, sessionID, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) start(t *testing.T) sandbox.Snapshot {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/demo/sessions", "", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var snap sandbox.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	return snap
}

func decodeError(t *testing.T, resp *http.Response) APIError {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestHTTPServer_Health(t *testing.T) {
	env := newTestEnv(t, sandbox.Config{})

	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_DemoFlow(t *testing.T) {
	env := newTestEnv(t, sandbox.Config{})
	snap := env.start(t)
	require.NotEmpty(t, snap.SessionID)
	require.Len(t, snap.Projects, len(project.Seed()))

	resp := env.do(t, http.MethodPatch, "/api/demo/projects/proj-002", snap.SessionID, `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var edited project.Project
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&edited))
	require.Equal(t, project.StatusCompleted, edited.Status)
	require.NotNil(t, edited.CompletedAt)

	resp = env.do(t, http.MethodGet, "/api/demo/activity?limit=5", snap.SessionID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var feed struct {
		Activity []activity.Entry `json:"activity"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
	require.Len(t, feed.Activity, 1)
	require.Equal(t, "proj-002", feed.Activity[0].ProjectID)

	resp = env.do(t, http.MethodPost, "/api/demo/reset", snap.SessionID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reset struct {
		Projects []project.Project `json:"projects"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reset))
	require.Equal(t, project.StatusActive, reset.Projects[1].Status)

	resp = env.do(t, http.MethodGet, "/api/demo/activity", snap.SessionID, "")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
	require.NotNil(t, feed.Activity)
	require.Empty(t, feed.Activity)

	resp = env.do(t, http.MethodGet, "/api/demo/projects/proj-002", snap.SessionID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/demo/sessions/current", snap.SessionID, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/demo/projects", snap.SessionID, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "SESSION_NOT_FOUND", decodeError(t, resp).Code)
}

func TestHTTPServer_DemoErrors(t *testing.T) {
	env := newTestEnv(t, sandbox.Config{})
	snap := env.start(t)

	tests := []struct {
		name    string
		method  string
		path    string
		session string
		body    string
		status  int
		code    string
	}{
		{"missing session header", http.MethodGet, "/api/demo/projects", "", "", http.StatusBadRequest, "MISSING_SESSION"},
		{"unknown session", http.MethodGet, "/api/demo/projects", "nope", "", http.StatusNotFound, "SESSION_NOT_FOUND"},
		{"unknown project", http.MethodPatch, "/api/demo/projects/proj-999", snap.SessionID, `{"status":"completed"}`, http.StatusNotFound, "PROJECT_NOT_FOUND"},
		{"invalid status", http.MethodPatch, "/api/demo/projects/proj-001", snap.SessionID, `{"status":"shipped"}`, http.StatusUnprocessableEntity, "INVALID_PATCH"},
		{"empty patch", http.MethodPatch, "/api/demo/projects/proj-001", snap.SessionID, `{}`, http.StatusUnprocessableEntity, "INVALID_PATCH"},
		{"unknown field", http.MethodPatch, "/api/demo/projects/proj-001", snap.SessionID, `{"name":"x"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"malformed json", http.MethodPatch, "/api/demo/projects/proj-001", snap.SessionID, `{`, http.StatusBadRequest, "BAD_REQUEST"},
		{"bad limit", http.MethodGet, "/api/demo/activity?limit=-1", snap.SessionID, "", http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, tt.method, tt.path, tt.session, tt.body)
			require.Equal(t, tt.status, resp.StatusCode)
			require.Equal(t, tt.code, decodeError(t, resp).Code)
		})
	}

	resp := env.do(t, http.MethodGet, "/api/demo/activity", snap.SessionID, "")
	var feed struct {
		Activity []activity.Entry `json:"activity"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
	require.Empty(t, feed.Activity)
}

func TestHTTPServer_RateLimitAndCapacity(t *testing.T) {
	env := newTestEnv(t, sandbox.Config{MaxSessions: 1, EditRate: 0.001, EditBurst: 1})
	snap := env.start(t)

	resp := env.do(t, http.MethodPost, "/api/demo/sessions", "", "")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, "SESSION_LIMIT", decodeError(t, resp).Code)

	resp = env.do(t, http.MethodPatch, "/api/demo/projects/proj-001", snap.SessionID, `{"tag":"research"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, "/api/demo/projects/proj-001", snap.SessionID, `{"tag":"design"}`)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "RATE_LIMITED", decodeError(t, resp).Code)
}

func TestHTTPServer_Theme(t *testing.T) {
	env := newTestEnv(t, sandbox.Config{})

	call := func(method, token, body string) *http.Response {
		var reader io.Reader
		if body != "" {
			reader = bytes.NewBufferString(body)
		}
		req, err := http.NewRequest(method, env.server.URL+"/api/preferences/theme", reader)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := call(http.MethodGet, "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(http.MethodGet, "token", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pref preference.Preference
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pref))
	require.Equal(t, preference.ThemeSystem, pref.Theme)

	resp = call(http.MethodPut, "token", `{"theme":"dark"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(http.MethodPut, "token", `{"theme":"sepia"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = call(http.MethodGet, "token", "")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pref))
	require.Equal(t, preference.ThemeDark, pref.Theme)
}
