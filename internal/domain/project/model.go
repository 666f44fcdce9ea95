package project

import (
	"math"
	"time"
)

// Status represents the lifecycle status of a project
type Status string

const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusCompleted, StatusArchived:
		return true
	default:
		return false
	}
}

// Tag is the optional category shown next to a project. The zero value means untagged.
type Tag string

const (
	TagNone        Tag = ""
	TagDesign      Tag = "design"
	TagEngineering Tag = "engineering"
	TagMarketing   Tag = "marketing"
	TagOperations  Tag = "operations"
	TagResearch    Tag = "research"
)

// Valid reports whether t is a known tag or TagNone.
func (t Tag) Valid() bool {
	switch t {
	case TagNone, TagDesign, TagEngineering, TagMarketing, TagOperations, TagResearch:
		return true
	default:
		return false
	}
}

// ChecklistItem is a single step of a project's checklist
type ChecklistItem struct {
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// Project represents a demo project row
type Project struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Status         Status          `json:"status"`
	Tag            Tag             `json:"tag,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	Checklist      []ChecklistItem `json:"checklist"`
	ChecklistDone  int             `json:"checklist_done"`
	ChecklistTotal int             `json:"checklist_total"`
	Progress       int             `json:"progress"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	ArchivedAt     *time.Time      `json:"archived_at,omitempty"`
}

// Normalize recomputes the checklist counters and progress from Checklist.
func (p *Project) Normalize() {
	done := 0
	for _, item := range p.Checklist {
		if item.Done {
			done++
		}
	}
	p.ChecklistDone = done
	p.ChecklistTotal = len(p.Checklist)
	p.Progress = Progress(done, len(p.Checklist))
}

// Clone returns a deep copy of p.
func (p Project) Clone() Project {
	out := p
	if p.Checklist != nil {
		out.Checklist = make([]ChecklistItem, len(p.Checklist))
		copy(out.Checklist, p.Checklist)
	}
	out.CompletedAt = cloneTime(p.CompletedAt)
	out.ArchivedAt = cloneTime(p.ArchivedAt)
	return out
}

// Progress returns the rounded completion percentage, 0 for an empty checklist.
func Progress(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
