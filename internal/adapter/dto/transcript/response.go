package transcript

import "time"

// Record sources
const (
	SourceStore  = "store"
	SourceRecent = "recent"
)

// TranscriptResponse is one record as returned by the API
type TranscriptResponse struct {
	ID           string                 `json:"id"`
	CaptureStart time.Time              `json:"capture_start"`
	CaptureEnd   time.Time              `json:"capture_end"`
	SourceFile   string                 `json:"source_file"`
	Transcript   string                 `json:"transcript"`
	Summary      string                 `json:"summary"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// ListTranscriptsResponse wraps a list of records
type ListTranscriptsResponse struct {
	Transcripts []TranscriptResponse `json:"transcripts"`
	Count       int                  `json:"count"`
	// Source is "recent" when the store was unavailable
	Source string `json:"source"`
}
