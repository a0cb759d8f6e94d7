package pipeline

import "time"

// StatusResponse is the public view of the pipeline state
type StatusResponse struct {
	State          string     `json:"state"`
	IsRunning      bool       `json:"is_running"`
	ProcessedCount int64      `json:"processed_count"`
	FailedCount    int64      `json:"failed_count"`
	LastError      *string    `json:"last_error"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	Uptime         string     `json:"uptime,omitempty"`
}

// ActionResponse is returned by start and stop
type ActionResponse struct {
	Status string `json:"status"`
}
