package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `demobox serves a guest demo of a project tracker. Every demo session is a private,
in-memory copy of six sample projects. Nothing a guest does is saved.

Workflow:
1) start_demo returns a session_id and the seeded projects.
2) list_demo_projects / list_demo_activity read the session.
3) edit_demo_project changes status, tag, summary or checklist of one project.
   Each successful edit adds exactly one activity entry.
4) reset_demo restores the seed and clears activity. end_demo discards the session.

Pass session_id as a tool argument, or once via _meta.demo_session_id.
Signed-in users can read and save their theme with get_theme / set_theme.

Docs: demobox://docs/sandbox
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "demobox://docs/sandbox",
		Name:        "docs_sandbox",
		Title:       "Demo sandbox reference",
		Description: "Project fields, edit rules and activity feed semantics of the guest demo.",
		Content: `# Demo sandbox

## Projects

Each project has an id, name, status, tag, summary and checklist.

- status: active, pending, completed, archived. Moving to completed or archived stamps
  completed_at / archived_at; moving away clears it.
- tag: design, engineering, marketing, operations, research, or "" for none.
- summary: free text, trimmed, at most 500 characters. "" clears it.
- checklist: up to 50 items with a non-empty label. progress is round(done / total * 100),
  and 0 for an empty checklist. Send clear_checklist: true to empty it.

Name and id never change.

## Edits

An edit names one project and any subset of status, tag, summary and checklist.
Invalid edits are rejected whole and change nothing. Unknown project ids fail with
PROJECT_NOT_FOUND.

## Activity

Every successful edit adds one entry, newest first. When several fields change the entry
describes the most important one: status, then checklist, then tag, then summary. An edit
whose values already matched still logs "<field> saved without changes".

## Reset

reset_demo restores the six sample projects exactly and empties the activity feed.
Idle sessions expire and must be started again.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
