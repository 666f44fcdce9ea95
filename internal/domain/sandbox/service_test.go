package sandbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rpggio/demobox/internal/domain/activity"
	"github.com/rpggio/demobox/internal/domain/project"
	"github.com/rpggio/demobox/internal/domain/sandbox"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestService(t *testing.T, cfg sandbox.Config) (*sandbox.Service, *fakeClock, *sandbox.Metrics) {
	t.Helper()
	clock := newFakeClock()
	metrics := sandbox.NewMetrics(prometheus.NewRegistry())
	svc := sandbox.NewService(cfg, nil, sandbox.WithClock(clock), sandbox.WithMetrics(metrics))
	return svc, clock, metrics
}

func TestService_StartAndEdit(t *testing.T) {
	ctx := context.Background()
	svc, _, metrics := newTestService(t, sandbox.Config{})

	snap, err := svc.Start(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, snap.SessionID)
	require.Len(t, snap.Projects, len(project.Seed()))

	updated, err := svc.Edit(ctx, snap.SessionID, "proj-002", project.Patch{Status: statusPtr(project.StatusCompleted)})
	require.NoError(t, err)
	require.Equal(t, project.StatusCompleted, updated.Status)

	entries, err := svc.Activity(ctx, snap.SessionID, activity.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "proj-002", entries[0].ProjectID)

	projects, err := svc.Reset(ctx, snap.SessionID)
	require.NoError(t, err)
	require.Equal(t, project.Seed(), projects)

	entries, err = svc.Activity(ctx, snap.SessionID, activity.ListOptions{})
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionsStarted))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Edits.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Resets))
}

func TestService_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, sandbox.Config{})

	a, err := svc.Start(ctx)
	require.NoError(t, err)
	b, err := svc.Start(ctx)
	require.NoError(t, err)
	require.NotEqual(t, a.SessionID, b.SessionID)

	_, err = svc.Edit(ctx, a.SessionID, "proj-001", project.Patch{Status: statusPtr(project.StatusArchived)})
	require.NoError(t, err)

	pb, err := svc.Project(ctx, b.SessionID, "proj-001")
	require.NoError(t, err)
	require.Equal(t, project.StatusActive, pb.Status)

	entries, err := svc.Activity(ctx, b.SessionID, activity.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestService_UnknownSessionAndProject(t *testing.T) {
	ctx := context.Background()
	svc, _, metrics := newTestService(t, sandbox.Config{})

	_, err := svc.Projects(ctx, "missing")
	require.ErrorIs(t, err, sandbox.ErrSessionNotFound)

	snap, err := svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.Edit(ctx, snap.SessionID, "proj-999", project.Patch{Status: statusPtr(project.StatusCompleted)})
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	_, err = svc.Edit(ctx, snap.SessionID, "proj-001", project.Patch{Status: statusPtr("nope")})
	require.ErrorIs(t, err, project.ErrInvalidPatch)

	entries, err := svc.Activity(ctx, snap.SessionID, activity.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, entries)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Edits.WithLabelValues("not_found")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Edits.WithLabelValues("invalid")))
}

func TestService_EndDiscardsSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, sandbox.Config{})

	snap, err := svc.Start(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, svc.Len())

	require.NoError(t, svc.End(ctx, snap.SessionID))
	require.Equal(t, 0, svc.Len())
	require.ErrorIs(t, svc.End(ctx, snap.SessionID), sandbox.ErrSessionNotFound)

	_, err = svc.Projects(ctx, snap.SessionID)
	require.ErrorIs(t, err, sandbox.ErrSessionNotFound)
}

func TestService_SessionExpiry(t *testing.T) {
	ctx := context.Background()
	svc, clock, metrics := newTestService(t, sandbox.Config{SessionTTL: 10 * time.Minute})

	idle, err := svc.Start(ctx)
	require.NoError(t, err)
	busy, err := svc.Start(ctx)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	_, err = svc.Projects(ctx, busy.SessionID)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	require.Equal(t, 1, svc.Reap())
	require.Equal(t, 1, svc.Len())

	_, err = svc.Projects(ctx, idle.SessionID)
	require.ErrorIs(t, err, sandbox.ErrSessionNotFound)

	clock.Advance(11 * time.Minute)
	_, err = svc.Projects(ctx, busy.SessionID)
	require.ErrorIs(t, err, sandbox.ErrSessionNotFound)
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.SessionsEnded.WithLabelValues("expired")))
}

func TestService_SessionLimit(t *testing.T) {
	ctx := context.Background()
	svc, clock, _ := newTestService(t, sandbox.Config{MaxSessions: 2, SessionTTL: time.Minute})

	_, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.Start(ctx)
	require.ErrorIs(t, err, sandbox.ErrSessionLimit)

	clock.Advance(2 * time.Minute)
	_, err = svc.Start(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, svc.Len())
}

func TestService_EditRateLimit(t *testing.T) {
	ctx := context.Background()
	svc, clock, metrics := newTestService(t, sandbox.Config{EditRate: 1, EditBurst: 2})

	snap, err := svc.Start(ctx)
	require.NoError(t, err)

	patch := project.Patch{Summary: strPtr("x")}
	_, err = svc.Edit(ctx, snap.SessionID, "proj-001", patch)
	require.NoError(t, err)
	_, err = svc.Edit(ctx, snap.SessionID, "proj-001", patch)
	require.NoError(t, err)
	_, err = svc.Edit(ctx, snap.SessionID, "proj-001", patch)
	require.ErrorIs(t, err, sandbox.ErrRateLimited)

	entries, err := svc.Activity(ctx, snap.SessionID, activity.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	clock.Advance(time.Second)
	_, err = svc.Edit(ctx, snap.SessionID, "proj-001", patch)
	require.NoError(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Edits.WithLabelValues("rate_limited")))
}

func TestService_CustomSeed(t *testing.T) {
	ctx := context.Background()
	seed := func() []project.Project {
		p := project.Project{ID: "only", Name: "Only", Status: project.StatusPending}
		p.Normalize()
		return []project.Project{p}
	}
	svc := sandbox.NewService(sandbox.Config{}, nil, sandbox.WithSeed(seed))

	snap, err := svc.Start(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Projects, 1)
	require.Equal(t, "only", snap.Projects[0].ID)
}

func TestService_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, _, _ := newTestService(t, sandbox.Config{SessionTTL: time.Minute, ReapInterval: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
