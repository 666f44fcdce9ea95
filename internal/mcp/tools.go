package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/demobox/internal/domain/activity"
	"github.com/rpggio/demobox/internal/domain/preference"
	"github.com/rpggio/demobox/internal/domain/project"
)

type sessionInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Demo session ID from start_demo (falls back to _meta.demo_session_id)"`
}

type editProjectInput struct {
	SessionID      string                  `json:"session_id,omitempty" jsonschema:"Demo session ID from start_demo (falls back to _meta.demo_session_id)"`
	ProjectID      string                  `json:"project_id" jsonschema:"Project to edit"`
	Status         *string                 `json:"status,omitempty" jsonschema:"New status: active, pending, completed or archived"`
	Tag            *string                 `json:"tag,omitempty" jsonschema:"New tag: design, engineering, marketing, operations, research, or empty to clear"`
	Summary        *string                 `json:"summary,omitempty" jsonschema:"New summary, empty to clear"`
	Checklist      []project.ChecklistItem `json:"checklist,omitempty" jsonschema:"Replacement checklist"`
	ClearChecklist bool                    `json:"clear_checklist,omitempty" jsonschema:"Remove every checklist item"`
}

func (in editProjectInput) patch() project.Patch {
	patch := project.Patch{
		Summary:        in.Summary,
		Checklist:      in.Checklist,
		ClearChecklist: in.ClearChecklist,
	}
	if in.Status != nil {
		status := project.Status(*in.Status)
		patch.Status = &status
	}
	if in.Tag != nil {
		tag := project.Tag(*in.Tag)
		patch.Tag = &tag
	}
	return patch
}

type listActivityInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Demo session ID from start_demo (falls back to _meta.demo_session_id)"`
	ProjectID string `json:"project_id,omitempty" jsonschema:"Only entries for this project"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum entries to return (0 = all)"`
}

type setThemeInput struct {
	Theme string `json:"theme" jsonschema:"light, dark or system"`
}

type emptyInput struct{}

type startDemoOutput struct {
	SessionID string            `json:"session_id" jsonschema:"ID to pass to the other demo tools"`
	Projects  []project.Project `json:"projects" jsonschema:"Seeded projects"`
}

type projectsOutput struct {
	Projects []project.Project `json:"projects" jsonschema:"Working projects in display order"`
}

type editProjectOutput struct {
	Project project.Project `json:"project" jsonschema:"Project after the edit"`
}

type activityOutput struct {
	Activity []activity.Entry `json:"activity" jsonschema:"Activity entries, newest first"`
}

type endDemoOutput struct {
	SessionID string `json:"session_id" jsonschema:"Discarded session"`
}

type themeOutput struct {
	UserID string `json:"user_id" jsonschema:"Signed-in user"`
	Theme  string `json:"theme" jsonschema:"Saved theme"`
}

func registerTools(server *sdkmcp.Server, services Services) {
	if services.Sandbox != nil {
		registerSandboxTools(server, services.Sandbox)
	}
	if services.Preferences != nil {
		registerPreferenceTools(server, services.Preferences)
	}
}

func registerSandboxTools(server *sdkmcp.Server, svc SandboxService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "start_demo",
		Description: "Start a guest demo session seeded with sample projects",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, startDemoOutput, error) {
		snap, err := svc.Start(ctx)
		if err != nil {
			return nil, startDemoOutput{}, toolError(err)
		}
		out := startDemoOutput{SessionID: snap.SessionID, Projects: snap.Projects}
		return textResult("Started demo session %s with %d projects", out.SessionID, len(out.Projects)), out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_demo_projects",
		Description: "List the projects of a demo session",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args sessionInput) (*sdkmcp.CallToolResult, projectsOutput, error) {
		sessionID, err := resolveSession(ctx, args.SessionID)
		if err != nil {
			return nil, projectsOutput{}, err
		}
		projects, err := svc.Projects(ctx, sessionID)
		if err != nil {
			return nil, projectsOutput{}, toolError(err)
		}
		return textResult("%d projects", len(projects)), projectsOutput{Projects: projects}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "edit_demo_project",
		Description: "Change status, tag, summary or checklist of one demo project. Adds one activity entry.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args editProjectInput) (*sdkmcp.CallToolResult, editProjectOutput, error) {
		sessionID, err := resolveSession(ctx, args.SessionID)
		if err != nil {
			return nil, editProjectOutput{}, err
		}
		p, err := svc.Edit(ctx, sessionID, args.ProjectID, args.patch())
		if err != nil {
			return nil, editProjectOutput{}, toolError(err)
		}
		return textResult("Updated %s: %s, %d%% done", p.ID, p.Status, p.Progress), editProjectOutput{Project: *p}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_demo_activity",
		Description: "List the activity feed of a demo session, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args listActivityInput) (*sdkmcp.CallToolResult, activityOutput, error) {
		sessionID, err := resolveSession(ctx, args.SessionID)
		if err != nil {
			return nil, activityOutput{}, err
		}
		if args.Limit < 0 {
			return nil, activityOutput{}, &APIError{Code: "INVALID_LIMIT", Message: "limit must not be negative"}
		}
		entries, err := svc.Activity(ctx, sessionID, activity.ListOptions{ProjectID: args.ProjectID, Limit: args.Limit})
		if err != nil {
			return nil, activityOutput{}, toolError(err)
		}
		return textResult("%d activity entries", len(entries)), activityOutput{Activity: entries}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "reset_demo",
		Description: "Restore the sample projects and clear the activity feed",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args sessionInput) (*sdkmcp.CallToolResult, projectsOutput, error) {
		sessionID, err := resolveSession(ctx, args.SessionID)
		if err != nil {
			return nil, projectsOutput{}, err
		}
		projects, err := svc.Reset(ctx, sessionID)
		if err != nil {
			return nil, projectsOutput{}, toolError(err)
		}
		return textResult("Demo reset to %d sample projects", len(projects)), projectsOutput{Projects: projects}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "end_demo",
		Description: "Discard a demo session",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args sessionInput) (*sdkmcp.CallToolResult, endDemoOutput, error) {
		sessionID, err := resolveSession(ctx, args.SessionID)
		if err != nil {
			return nil, endDemoOutput{}, err
		}
		if err := svc.End(ctx, sessionID); err != nil {
			return nil, endDemoOutput{}, toolError(err)
		}
		return textResult("Ended demo session %s", sessionID), endDemoOutput{SessionID: sessionID}, nil
	})
}

func registerPreferenceTools(server *sdkmcp.Server, svc PreferenceService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_theme",
		Description: "Get the signed-in user's theme preference",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, themeOutput, error) {
		userID := getUserID(ctx)
		if userID == "" {
			return nil, themeOutput{}, errUnauthenticated
		}
		pref, err := svc.Get(ctx, userID)
		if err != nil {
			return nil, themeOutput{}, toolError(err)
		}
		out := themeOutput{UserID: pref.UserID, Theme: string(pref.Theme)}
		return textResult("Theme: %s", out.Theme), out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_theme",
		Description: "Save the signed-in user's theme preference",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args setThemeInput) (*sdkmcp.CallToolResult, themeOutput, error) {
		userID := getUserID(ctx)
		if userID == "" {
			return nil, themeOutput{}, errUnauthenticated
		}
		pref, err := svc.Set(ctx, userID, preference.Theme(args.Theme))
		if err != nil {
			return nil, themeOutput{}, toolError(err)
		}
		out := themeOutput{UserID: pref.UserID, Theme: string(pref.Theme)}
		return textResult("Theme saved: %s", out.Theme), out, nil
	})
}

var (
	errMissingSession  = &APIError{Code: "MISSING_SESSION", Message: "session_id is required", RecoveryHint: "Call start_demo first"}
	errUnauthenticated = &APIError{Code: "UNAUTHORIZED", Message: "no signed-in user"}
)

func resolveSession(ctx context.Context, arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	if sessionID := getDemoSessionID(ctx); sessionID != "" {
		return sessionID, nil
	}
	return "", errMissingSession
}

func textResult(format string, args ...any) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}
