package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TranscriptRecord is the immutable result of transcribing and summarizing one segment
type TranscriptRecord struct {
	ID           uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	CaptureStart time.Time         `json:"capture_start" gorm:"not null;index"`
	CaptureEnd   time.Time         `json:"capture_end" gorm:"not null"`
	SourceFile   string            `json:"source_file" gorm:"type:varchar(255);not null"`
	Transcript   string            `json:"transcript" gorm:"type:text"`
	Summary      string            `json:"summary" gorm:"type:text"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time         `json:"created_at" gorm:"not null;index"`
}

// TableName specifies the table name for GORM
func (TranscriptRecord) TableName() string {
	return "transcript_records"
}

// NewTranscriptRecord creates a record for a processed segment
func NewTranscriptRecord(seg Segment, captureEnd time.Time, transcript, summary string) TranscriptRecord {
	return TranscriptRecord{
		ID:           uuid.New(),
		CaptureStart: seg.CaptureStart,
		CaptureEnd:   captureEnd,
		SourceFile:   seg.Name,
		Transcript:   transcript,
		Summary:      summary,
		Metadata:     datatypes.JSONMap{"segment_bytes": seg.Size},
		CreatedAt:    time.Now().UTC(),
	}
}

// SegmentFailure describes a segment dropped after exhausting its retries
type SegmentFailure struct {
	SourceFile   string    `json:"source_file"`
	CaptureStart time.Time `json:"capture_start"`
	Stage        string    `json:"stage"`
	Attempts     int       `json:"attempts"`
	Error        string    `json:"error"`
	FailedAt     time.Time `json:"failed_at"`
}
