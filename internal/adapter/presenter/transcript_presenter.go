package presenter

import (
	"github.com/johnquangdev/monitor-agent/internal/adapter/dto/transcript"
	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
)

// ToTranscriptResponse converts a TranscriptRecord entity to its DTO
func ToTranscriptResponse(r entities.TranscriptRecord) transcript.TranscriptResponse {
	return transcript.TranscriptResponse{
		ID:           r.ID.String(),
		CaptureStart: r.CaptureStart,
		CaptureEnd:   r.CaptureEnd,
		SourceFile:   r.SourceFile,
		Transcript:   r.Transcript,
		Summary:      r.Summary,
		Metadata:     r.Metadata,
		CreatedAt:    r.CreatedAt,
	}
}

// ToListTranscriptsResponse converts records read from source
func ToListTranscriptsResponse(records []entities.TranscriptRecord, source string) transcript.ListTranscriptsResponse {
	out := make([]transcript.TranscriptResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ToTranscriptResponse(r))
	}
	return transcript.ListTranscriptsResponse{Transcripts: out, Count: len(out), Source: source}
}
