package entities

import "time"

// PipelineState is the lifecycle state of the monitoring pipeline
type PipelineState int

const (
	PipelineStopped PipelineState = iota
	PipelineStarting
	PipelineRunning
	PipelineStopping
)

func (s PipelineState) String() string {
	switch s {
	case PipelineStopped:
		return "stopped"
	case PipelineStarting:
		return "starting"
	case PipelineRunning:
		return "running"
	case PipelineStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// PipelineStatus is a point-in-time snapshot of the pipeline
type PipelineStatus struct {
	State          PipelineState
	ProcessedCount int64
	FailedCount    int64
	LastError      error
	StartedAt      time.Time
}

// IsRunning reports whether the pipeline is in the Running state
func (s PipelineStatus) IsRunning() bool {
	return s.State == PipelineRunning
}

// CaptureExit describes an exit of the capture process that nobody asked for
type CaptureExit struct {
	ExitCode    int
	Err         error
	AuthFailure bool
	Runtime     time.Duration
}
