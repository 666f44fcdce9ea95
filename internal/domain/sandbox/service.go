package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/demobox/internal/domain/activity"
	"github.com/rpggio/demobox/internal/domain/project"
	"golang.org/x/time/rate"
)

// Config controls session lifetime and throttling.
type Config struct {
	SessionTTL   time.Duration
	ReapInterval time.Duration
	MaxSessions  int
	EditRate     float64
	EditBurst    int
}

// Service keeps guest sessions in memory, keyed by session ID.
type Service struct {
	cfg     Config
	clock   Clock
	seed    func() []project.Project
	metrics *Metrics
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	session  *Session
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(clock Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// WithSeed overrides the seed dataset.
func WithSeed(seed func() []project.Project) Option {
	return func(s *Service) { s.seed = seed }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a new sandbox service.
func NewService(cfg Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		cfg:      cfg,
		clock:    SystemClock{},
		seed:     project.Seed,
		logger:   logger,
		sessions: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// Snapshot is the state handed to a freshly loaded demo page.
type Snapshot struct {
	SessionID string            `json:"session_id"`
	Projects  []project.Project `json:"projects"`
}

// Start creates a fresh session from the seed.
func (s *Service) Start(ctx context.Context) (*Snapshot, error) {
	now := s.clock.Now()

	s.mu.Lock()
	s.reapLocked(now)
	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		return nil, ErrSessionLimit
	}
	sess := NewSession(uuid.NewString(), s.seed(), s.clock)
	s.sessions[sess.ID()] = &entry{
		session:  sess,
		limiter:  s.newLimiter(),
		lastSeen: now,
	}
	live := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SessionsStarted.Inc()
	s.metrics.LiveSessions.Set(float64(live))
	s.logger.DebugContext(ctx, "demo session started", "session_id", sess.ID(), "live", live)

	return &Snapshot{SessionID: sess.ID(), Projects: sess.ListProjects()}, nil
}

// Projects lists the session's working projects.
func (s *Service) Projects(ctx context.Context, sessionID string) ([]project.Project, error) {
	var out []project.Project
	err := s.with(sessionID, func(e *entry) error {
		out = e.session.ListProjects()
		return nil
	})
	return out, err
}

// Project returns one working project.
func (s *Service) Project(ctx context.Context, sessionID, projectID string) (*project.Project, error) {
	var out project.Project
	err := s.with(sessionID, func(e *entry) error {
		p, err := e.session.Project(projectID)
		out = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Edit applies a patch to one project of the session.
func (s *Service) Edit(ctx context.Context, sessionID, projectID string, patch project.Patch) (*project.Project, error) {
	var out project.Project
	err := s.with(sessionID, func(e *entry) error {
		if !e.limiter.AllowN(s.clock.Now(), 1) {
			return ErrRateLimited
		}
		p, err := e.session.EditProject(projectID, patch)
		out = p
		return err
	})

	s.metrics.Edits.WithLabelValues(editOutcome(err)).Inc()
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			s.logger.DebugContext(ctx, "demo edit rejected", "session_id", sessionID, "project_id", projectID, "error", err)
		}
		return nil, err
	}
	s.logger.DebugContext(ctx, "demo project edited", "session_id", sessionID, "project_id", projectID)
	return &out, nil
}

// Activity returns the session's activity feed, newest first.
func (s *Service) Activity(ctx context.Context, sessionID string, opts activity.ListOptions) ([]activity.Entry, error) {
	var out []activity.Entry
	err := s.with(sessionID, func(e *entry) error {
		out = slices.Collect(e.session.RecentActivity(opts))
		return nil
	})
	if out == nil && err == nil {
		out = []activity.Entry{}
	}
	return out, err
}

// Reset restores the session to the seed and returns the fresh projects.
func (s *Service) Reset(ctx context.Context, sessionID string) ([]project.Project, error) {
	var out []project.Project
	err := s.with(sessionID, func(e *entry) error {
		e.session.Reset()
		out = e.session.ListProjects()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Resets.Inc()
	s.logger.DebugContext(ctx, "demo session reset", "session_id", sessionID)
	return out, nil
}

// End discards a session.
func (s *Service) End(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	live := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.metrics.SessionsEnded.WithLabelValues(reasonEnded).Inc()
	s.metrics.LiveSessions.Set(float64(live))
	s.logger.DebugContext(ctx, "demo session ended", "session_id", sessionID)
	return nil
}

// Len returns the number of live sessions.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Reap drops sessions idle for longer than the TTL and returns how many were dropped.
func (s *Service) Reap() int {
	s.mu.Lock()
	n := s.reapLocked(s.clock.Now())
	live := len(s.sessions)
	s.mu.Unlock()

	if n > 0 {
		s.metrics.LiveSessions.Set(float64(live))
		s.logger.Debug("expired demo sessions reaped", "count", n, "live", live)
	}
	return n
}

// Run reaps expired sessions every ReapInterval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	interval := s.cfg.ReapInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Reap()
		}
	}
}

func (s *Service) with(sessionID string, fn func(*entry) error) error {
	now := s.clock.Now()

	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	if ok && s.expired(e, now) {
		delete(s.sessions, sessionID)
		s.metrics.SessionsEnded.WithLabelValues(reasonExpired).Inc()
		s.metrics.LiveSessions.Set(float64(len(s.sessions)))
		ok = false
	}
	if ok {
		e.lastSeen = now
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e)
}

func (s *Service) reapLocked(now time.Time) int {
	n := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.metrics.SessionsEnded.WithLabelValues(reasonExpired).Add(float64(n))
	}
	return n
}

func (s *Service) expired(e *entry, now time.Time) bool {
	return s.cfg.SessionTTL > 0 && now.Sub(e.lastSeen) > s.cfg.SessionTTL
}

func (s *Service) newLimiter() *rate.Limiter {
	if s.cfg.EditRate <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := s.cfg.EditBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(s.cfg.EditRate), burst)
}

func editOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrRateLimited):
		return outcomeRateLimited
	case errors.Is(err, project.ErrInvalidPatch):
		return outcomeInvalid
	default:
		return outcomeNotFound
	}
}
