package activity

import "time"

// Entry represents one field-level change recorded in a sandbox session
type Entry struct {
	Seq         int64     `json:"seq"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Field       string    `json:"field"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
