package monitor

import (
	"context"
	"sync"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
	"github.com/johnquangdev/monitor-agent/internal/domain/repositories"
)

// StoreSink appends records to the durable store
type StoreSink struct {
	repo repositories.TranscriptRepository
}

// NewStoreSink creates a sink backed by the transcript repository
func NewStoreSink(repo repositories.TranscriptRepository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Deliver(ctx context.Context, record entities.TranscriptRecord) error {
	return s.repo.Append(ctx, &record)
}

// RecentBuffer keeps the latest records in memory
type RecentBuffer struct {
	mu      sync.RWMutex
	records []entities.TranscriptRecord
	next    int
	full    bool
}

// NewRecentBuffer creates a buffer holding up to capacity records
func NewRecentBuffer(capacity int) *RecentBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RecentBuffer{records: make([]entities.TranscriptRecord, capacity)}
}

func (b *RecentBuffer) Name() string { return "recent" }

func (b *RecentBuffer) Deliver(ctx context.Context, record entities.TranscriptRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records[b.next] = record
	b.next = (b.next + 1) % len(b.records)
	if b.next == 0 {
		b.full = true
	}
	return nil
}

// List returns up to limit records, newest first
func (b *RecentBuffer) List(limit int) []entities.TranscriptRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	size := b.next
	if b.full {
		size = len(b.records)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]entities.TranscriptRecord, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (b.next - i + len(b.records)) % len(b.records)
		out = append(out, b.records[idx])
	}
	return out
}
