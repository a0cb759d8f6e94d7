package jobcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type KeyContext string

var (
	keyJobID        KeyContext = "job_id"
	keySegment      KeyContext = "segment"
	keyStage        KeyContext = "stage"
	keyRetryAttempt KeyContext = "retry_attempt"
	keyMaxRetries   KeyContext = "max_retries"
	keyJobStartTime KeyContext = "job_start_time"
)

// Stages of segment processing
const (
	StageTranscribe = "transcribe"
	StageSummarize  = "summarize"
	StageDeliver    = "deliver"
)

// JobMetadata holds metadata for one segment job
type JobMetadata struct {
	JobID        uuid.UUID
	Segment      string
	Stage        string
	RetryAttempt int
	MaxRetries   int
	StartTime    time.Time
}

// JobBegin derives a context carrying the metadata of a segment job
func JobBegin(parentCtx context.Context, segment string, maxRetries int) context.Context {
	ctx := context.WithValue(parentCtx, keyJobID, uuid.New())
	ctx = context.WithValue(ctx, keySegment, segment)
	ctx = context.WithValue(ctx, keyRetryAttempt, 0)
	ctx = context.WithValue(ctx, keyMaxRetries, maxRetries)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())
	return ctx
}

// GetJobID extracts job ID from context
func GetJobID(ctx context.Context) (uuid.UUID, bool) {
	jobID, ok := ctx.Value(keyJobID).(uuid.UUID)
	return jobID, ok
}

// GetSegment extracts the segment file name from context
func GetSegment(ctx context.Context) string {
	segment, _ := ctx.Value(keySegment).(string)
	return segment
}

// SetStage records the processing stage in context
func SetStage(ctx context.Context, stage string) context.Context {
	ctx = context.WithValue(ctx, keyStage, stage)
	return context.WithValue(ctx, keyRetryAttempt, 0)
}

// GetStage extracts the processing stage from context
func GetStage(ctx context.Context) string {
	stage, _ := ctx.Value(keyStage).(string)
	return stage
}

// GetRetryAttempt extracts current retry attempt from context
func GetRetryAttempt(ctx context.Context) int {
	attempt, ok := ctx.Value(keyRetryAttempt).(int)
	if !ok {
		return 0
	}
	return attempt
}

// SetRetryAttempt updates retry attempt in context
func SetRetryAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, keyRetryAttempt, attempt)
}

// GetMaxRetries extracts max retries from context
func GetMaxRetries(ctx context.Context) int {
	maxRetries, ok := ctx.Value(keyMaxRetries).(int)
	if !ok {
		return 3 // default
	}
	return maxRetries
}

// GetJobStartTime extracts job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	jobID, _ := GetJobID(ctx)
	startTime, _ := GetJobStartTime(ctx)

	return &JobMetadata{
		JobID:        jobID,
		Segment:      GetSegment(ctx),
		Stage:        GetStage(ctx),
		RetryAttempt: GetRetryAttempt(ctx),
		MaxRetries:   GetMaxRetries(ctx),
		StartTime:    startTime,
	}
}

// Fields returns the job metadata as log fields
func Fields(ctx context.Context) []zap.Field {
	meta := GetJobMetadata(ctx)
	fields := []zap.Field{
		zap.String("job_id", meta.JobID.String()),
		zap.String("segment", meta.Segment),
	}
	if meta.Stage != "" {
		fields = append(fields,
			zap.String("stage", meta.Stage),
			zap.Int("attempt", meta.RetryAttempt),
			zap.Int("max_attempts", meta.MaxRetries),
		)
	}
	if !meta.StartTime.IsZero() {
		fields = append(fields, zap.Duration("elapsed", time.Since(meta.StartTime)))
	}
	return fields
}
