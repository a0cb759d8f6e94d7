package presenter

import (
	"time"

	"github.com/johnquangdev/monitor-agent/internal/adapter/dto/pipeline"
	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
)

// ToStatusResponse converts a pipeline snapshot taken at now
func ToStatusResponse(s entities.PipelineStatus, now time.Time) pipeline.StatusResponse {
	resp := pipeline.StatusResponse{
		State:          s.State.String(),
		IsRunning:      s.IsRunning(),
		ProcessedCount: s.ProcessedCount,
		FailedCount:    s.FailedCount,
	}
	if s.LastError != nil {
		msg := s.LastError.Error()
		resp.LastError = &msg
	}
	if !s.StartedAt.IsZero() {
		started := s.StartedAt
		resp.StartedAt = &started
		if s.IsRunning() {
			resp.Uptime = now.Sub(started).Truncate(time.Second).String()
		}
	}
	return resp
}
