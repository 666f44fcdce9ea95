// Package sandbox holds guest demo sessions: a seeded working copy of projects
// plus an activity feed, living only in memory and discarded on reset.
package sandbox

import (
	"fmt"
	"iter"
	"time"

	"github.com/rpggio/demobox/internal/domain/activity"
	"github.com/rpggio/demobox/internal/domain/project"
)

// Session is one guest's sandbox. It is not safe for concurrent use.
type Session struct {
	id       string
	seed     []project.Project
	projects []project.Project
	index    map[string]int
	log      *activity.Log
	clock    Clock
	fresh    bool
}

// NewSession creates an initialized session over a private copy of seed.
func NewSession(id string, seed []project.Project, clock Clock) *Session {
	if clock == nil {
		clock = SystemClock{}
	}
	s := &Session{
		id:    id,
		seed:  cloneProjects(seed),
		log:   activity.NewLog(),
		clock: clock,
	}
	s.Initialize()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Initialize loads the seed into a fresh working copy and clears the activity log.
func (s *Session) Initialize() {
	s.projects = cloneProjects(s.seed)
	s.index = make(map[string]int, len(s.projects))
	for i, p := range s.projects {
		s.index[p.ID] = i
	}
	s.log.Clear()
	s.fresh = true
}

// Reset restores the seed. It does nothing on a session that has not been edited.
func (s *Session) Reset() {
	if s.fresh {
		return
	}
	s.Initialize()
}

// Fresh reports whether the session still matches its seed.
func (s *Session) Fresh() bool {
	return s.fresh
}

// ListProjects returns copies of the working projects in seed order.
func (s *Session) ListProjects() []project.Project {
	return cloneProjects(s.projects)
}

// Project returns a copy of a single working project.
func (s *Session) Project(id string) (project.Project, error) {
	idx, ok := s.index[id]
	if !ok {
		return project.Project{}, fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}
	return s.projects[idx].Clone(), nil
}

// EditProject applies patch to the project with the given id and records one
// activity entry. Unknown ids and invalid patches leave the session unchanged.
func (s *Session) EditProject(id string, patch project.Patch) (project.Project, error) {
	idx, ok := s.index[id]
	if !ok {
		return project.Project{}, fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}

	now := s.clock.Now()
	working := s.projects[idx].Clone()
	changes, err := patch.Apply(&working, now)
	if err != nil {
		return project.Project{}, err
	}

	s.projects[idx] = working
	s.fresh = false
	s.log.Append(activityFor(working, patch, changes, now))

	return working.Clone(), nil
}

// ListActivity yields the activity feed newest-first. Each range reads the live
// log, so iterating again after further edits includes them.
func (s *Session) ListActivity() iter.Seq[activity.Entry] {
	return s.log.All()
}

// RecentActivity yields the activity feed filtered by opts.
func (s *Session) RecentActivity(opts activity.ListOptions) iter.Seq[activity.Entry] {
	return s.log.List(opts)
}

// activityFor describes the highest-priority change. A patch whose values all
// matched the project still produces an entry, naming the top supplied field.
func activityFor(proj project.Project, patch project.Patch, changes []project.Change, now time.Time) activity.Entry {
	entry := activity.Entry{
		ProjectID:   proj.ID,
		ProjectName: proj.Name,
		CreatedAt:   now,
	}
	if len(changes) > 0 {
		entry.Field = string(changes[0].Field)
		entry.Description = changes[0].Description()
		return entry
	}
	field := patch.Fields()[0]
	entry.Field = string(field)
	entry.Description = fmt.Sprintf("%s saved without changes", field)
	return entry
}

func cloneProjects(in []project.Project) []project.Project {
	out := make([]project.Project, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
