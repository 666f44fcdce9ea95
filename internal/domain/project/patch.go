package project

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxSummaryLength caps summaries in runes.
	MaxSummaryLength = 500
	// MaxChecklistItems caps checklist length.
	MaxChecklistItems = 50
)

// Field names a mutable project field. Declaration order is activity priority.
type Field string

const (
	FieldStatus    Field = "status"
	FieldChecklist Field = "checklist"
	FieldTag       Field = "tag"
	FieldSummary   Field = "summary"
)

// Patch is a partial update. Nil fields are left untouched; a pointer to the
// zero value clears Tag or Summary.
type Patch struct {
	Status    *Status         `json:"status,omitempty"`
	Tag       *Tag            `json:"tag,omitempty"`
	Summary   *string         `json:"summary,omitempty"`
	Checklist []ChecklistItem `json:"checklist,omitempty"`
	// ClearChecklist distinguishes "set to empty" from "not supplied".
	ClearChecklist bool `json:"clear_checklist,omitempty"`
}

// Fields returns the supplied fields, highest priority first.
func (p Patch) Fields() []Field {
	var fields []Field
	if p.Status != nil {
		fields = append(fields, FieldStatus)
	}
	if p.touchesChecklist() {
		fields = append(fields, FieldChecklist)
	}
	if p.Tag != nil {
		fields = append(fields, FieldTag)
	}
	if p.Summary != nil {
		fields = append(fields, FieldSummary)
	}
	return fields
}

func (p Patch) touchesChecklist() bool {
	return p.Checklist != nil || p.ClearChecklist
}

// Validate checks the patch without touching any project.
func (p Patch) Validate() error {
	if len(p.Fields()) == 0 {
		return fmt.Errorf("%w: no fields supplied", ErrInvalidPatch)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidPatch, *p.Status)
	}
	if p.Tag != nil && !p.Tag.Valid() {
		return fmt.Errorf("%w: unknown tag %q", ErrInvalidPatch, *p.Tag)
	}
	if p.Summary != nil && utf8.RuneCountInString(strings.TrimSpace(*p.Summary)) > MaxSummaryLength {
		return fmt.Errorf("%w: summary longer than %d characters", ErrInvalidPatch, MaxSummaryLength)
	}
	if p.ClearChecklist && len(p.Checklist) > 0 {
		return fmt.Errorf("%w: clear_checklist set together with checklist items", ErrInvalidPatch)
	}
	if len(p.Checklist) > MaxChecklistItems {
		return fmt.Errorf("%w: checklist has more than %d items", ErrInvalidPatch, MaxChecklistItems)
	}
	for i, item := range p.Checklist {
		if strings.TrimSpace(item.Label) == "" {
			return fmt.Errorf("%w: checklist item %d has an empty label", ErrInvalidPatch, i+1)
		}
	}
	return nil
}

// Change describes one field that an Apply call actually modified.
type Change struct {
	Field Field
	From  string
	To    string
}

// Description renders the change for the activity feed.
func (c Change) Description() string {
	switch c.Field {
	case FieldStatus:
		return fmt.Sprintf("status changed from %s to %s", c.From, c.To)
	case FieldChecklist:
		return fmt.Sprintf("checklist changed from %s to %s done", c.From, c.To)
	case FieldTag:
		switch {
		case c.From == "":
			return fmt.Sprintf("tag set to %s", c.To)
		case c.To == "":
			return fmt.Sprintf("tag cleared (was %s)", c.From)
		default:
			return fmt.Sprintf("tag changed from %s to %s", c.From, c.To)
		}
	case FieldSummary:
		if c.To == "" {
			return "summary cleared"
		}
		return "summary updated"
	default:
		return fmt.Sprintf("%s updated", c.Field)
	}
}

// Apply validates p and applies it to proj in place, stamping UpdatedAt with now.
// Returned changes are ordered by priority and omit fields whose value did not change.
// On error proj is left untouched.
func (p Patch) Apply(proj *Project, now time.Time) ([]Change, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var changes []Change

	if p.Status != nil && *p.Status != proj.Status {
		changes = append(changes, Change{Field: FieldStatus, From: string(proj.Status), To: string(*p.Status)})
		setStatus(proj, *p.Status, now)
	}

	if p.touchesChecklist() {
		next := make([]ChecklistItem, 0, len(p.Checklist))
		for _, item := range p.Checklist {
			next = append(next, ChecklistItem{Label: strings.TrimSpace(item.Label), Done: item.Done})
		}
		if !slices.Equal(next, proj.Checklist) {
			from := checklistRatio(proj.ChecklistDone, proj.ChecklistTotal)
			proj.Checklist = next
			proj.Normalize()
			changes = append(changes, Change{
				Field: FieldChecklist,
				From:  from,
				To:    checklistRatio(proj.ChecklistDone, proj.ChecklistTotal),
			})
		}
	}

	if p.Tag != nil && *p.Tag != proj.Tag {
		changes = append(changes, Change{Field: FieldTag, From: string(proj.Tag), To: string(*p.Tag)})
		proj.Tag = *p.Tag
	}

	if p.Summary != nil {
		summary := strings.TrimSpace(*p.Summary)
		if summary != proj.Summary {
			changes = append(changes, Change{Field: FieldSummary, From: proj.Summary, To: summary})
			proj.Summary = summary
		}
	}

	proj.UpdatedAt = now
	return changes, nil
}

func setStatus(proj *Project, status Status, now time.Time) {
	switch proj.Status {
	case StatusCompleted:
		proj.CompletedAt = nil
	case StatusArchived:
		proj.ArchivedAt = nil
	case StatusActive, StatusPending:
	}

	switch status {
	case StatusCompleted:
		proj.CompletedAt = &now
	case StatusArchived:
		proj.ArchivedAt = &now
	case StatusActive, StatusPending:
	}

	proj.Status = status
}

func checklistRatio(done, total int) string {
	return fmt.Sprintf("%d/%d", done, total)
}
