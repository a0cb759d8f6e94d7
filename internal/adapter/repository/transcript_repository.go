package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
	"github.com/johnquangdev/monitor-agent/internal/domain/repositories"
)

// TranscriptRepository handles transcript record persistence
type TranscriptRepository struct {
	db *gorm.DB
}

var _ repositories.TranscriptRepository = (*TranscriptRepository)(nil)

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// Append inserts a finished record
func (r *TranscriptRepository) Append(ctx context.Context, record *entities.TranscriptRecord) error {
	if record == nil {
		return errors.New("transcript record cannot be nil")
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// ListRecent returns the newest records by capture start
func (r *TranscriptRepository) ListRecent(ctx context.Context, limit int) ([]entities.TranscriptRecord, error) {
	var records []entities.TranscriptRecord
	err := r.db.WithContext(ctx).
		Order("capture_start DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
