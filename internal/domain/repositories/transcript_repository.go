package repositories

import (
	"context"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
)

// TranscriptRepository persists finished transcript records
type TranscriptRepository interface {
	// Append stores one record; records are immutable so there is no update
	Append(ctx context.Context, record *entities.TranscriptRecord) error
	// ListRecent returns up to limit records, newest capture first
	ListRecent(ctx context.Context, limit int) ([]entities.TranscriptRecord, error)
}
