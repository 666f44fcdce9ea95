package activity

// ListOptions provides filtering options for reading the log.
type ListOptions struct {
	ProjectID string
	Limit     int
}
