package project_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rpggio/demobox/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func TestSeed_Deterministic(t *testing.T) {
	first, err := json.Marshal(project.Seed())
	require.NoError(t, err)
	second, err := json.Marshal(project.Seed())
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestSeed_FreshValuesPerCall(t *testing.T) {
	a := project.Seed()
	a[0].Checklist[0].Done = false
	a[0].Name = "mutated"
	*a[3].CompletedAt = a[3].CompletedAt.AddDate(1, 0, 0)

	if diff := cmp.Diff(project.Seed()[0].Name, "Website redesign"); diff != "" {
		t.Fatalf("seed name changed (-got +want):\n%s", diff)
	}
	require.True(t, project.Seed()[0].Checklist[0].Done)
	require.Equal(t, 2024, project.Seed()[3].CompletedAt.Year())
}

func TestSeed_Invariants(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range project.Seed() {
		require.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		require.True(t, p.Status.Valid(), p.ID)
		require.True(t, p.Tag.Valid(), p.ID)

		done := 0
		for _, item := range p.Checklist {
			if item.Done {
				done++
			}
		}
		require.Equal(t, len(p.Checklist), p.ChecklistTotal, p.ID)
		require.Equal(t, done, p.ChecklistDone, p.ID)
		require.Equal(t, project.Progress(done, len(p.Checklist)), p.Progress, p.ID)
	}
	require.True(t, seen["proj-002"])
}

func TestProject_CloneDoesNotAlias(t *testing.T) {
	orig := project.Seed()[3]
	clone := orig.Clone()

	clone.Checklist[0].Label = "changed"
	*clone.CompletedAt = clone.CompletedAt.AddDate(5, 0, 0)

	if diff := cmp.Diff(project.Seed()[3], orig); diff != "" {
		t.Fatalf("clone aliased original (-want +got):\n%s", diff)
	}
}
