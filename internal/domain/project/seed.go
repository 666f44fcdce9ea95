package project

import "time"

// Seed returns the fixed guest dataset. Each call builds fresh values, so callers
// may keep and mutate the result without affecting later calls.
func Seed() []Project {
	projects := []Project{
		{
			ID:      "proj-001",
			Name:    "Website redesign",
			Status:  StatusActive,
			Tag:     TagDesign,
			Summary: "Refresh the marketing site with the new brand system.",
			Checklist: []ChecklistItem{
				{Label: "Audit current pages", Done: true},
				{Label: "Draft wireframes", Done: true},
				{Label: "Build component library", Done: false},
				{Label: "Launch", Done: false},
			},
			CreatedAt: seedTime(2024, time.January, 8, 9, 30),
			UpdatedAt: seedTime(2024, time.March, 2, 14, 5),
		},
		{
			ID:      "proj-002",
			Name:    "Mobile onboarding",
			Status:  StatusActive,
			Tag:     TagEngineering,
			Summary: "Shorten the sign-up flow on iOS and Android.",
			Checklist: []ChecklistItem{
				{Label: "Map the current funnel", Done: true},
				{Label: "Prototype two-step sign-up", Done: false},
				{Label: "Ship behind a flag", Done: false},
			},
			CreatedAt: seedTime(2024, time.February, 12, 11, 0),
			UpdatedAt: seedTime(2024, time.March, 9, 16, 45),
		},
		{
			ID:      "proj-003",
			Name:    "Q2 campaign",
			Status:  StatusPending,
			Tag:     TagMarketing,
			Summary: "Awaiting budget sign-off.",
			Checklist: []ChecklistItem{
				{Label: "Brief agency", Done: false},
				{Label: "Approve budget", Done: false},
			},
			CreatedAt: seedTime(2024, time.March, 1, 8, 15),
			UpdatedAt: seedTime(2024, time.March, 1, 8, 15),
		},
		{
			ID:      "proj-004",
			Name:    "Billing migration",
			Status:  StatusCompleted,
			Tag:     TagOperations,
			Summary: "Moved subscriptions to the new payment provider.",
			Checklist: []ChecklistItem{
				{Label: "Export customers", Done: true},
				{Label: "Dual-write invoices", Done: true},
				{Label: "Cut over", Done: true},
			},
			CreatedAt:   seedTime(2023, time.November, 20, 10, 0),
			UpdatedAt:   seedTime(2024, time.January, 31, 18, 20),
			CompletedAt: seedTimePtr(2024, time.January, 31, 18, 20),
		},
		{
			ID:        "proj-005",
			Name:      "Customer interviews",
			Status:    StatusActive,
			Tag:       TagResearch,
			Checklist: []ChecklistItem{},
			CreatedAt: seedTime(2024, time.March, 4, 13, 30),
			UpdatedAt: seedTime(2024, time.March, 4, 13, 30),
		},
		{
			ID:      "proj-006",
			Name:    "Legacy dashboard",
			Status:  StatusArchived,
			Summary: "Replaced by the new analytics view.",
			Checklist: []ChecklistItem{
				{Label: "Notify users", Done: true},
				{Label: "Redirect old URLs", Done: false},
			},
			CreatedAt:  seedTime(2023, time.June, 5, 9, 0),
			UpdatedAt:  seedTime(2023, time.December, 15, 12, 0),
			ArchivedAt: seedTimePtr(2023, time.December, 15, 12, 0),
		},
	}

	for i := range projects {
		projects[i].Normalize()
	}
	return projects
}

func seedTime(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func seedTimePtr(year int, month time.Month, day, hour, minute int) *time.Time {
	t := seedTime(year, month, day, hour, minute)
	return &t
}
