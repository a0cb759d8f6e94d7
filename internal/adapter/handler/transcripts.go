package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/errors"
	"github.com/johnquangdev/monitor-agent/internal/adapter/dto/transcript"
	"github.com/johnquangdev/monitor-agent/internal/adapter/presenter"
	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
	"github.com/johnquangdev/monitor-agent/internal/domain/repositories"
	"github.com/johnquangdev/monitor-agent/pkg/validator"
)

// RecentLister serves records kept in memory
type RecentLister interface {
	List(limit int) []entities.TranscriptRecord
}

// Transcripts handles transcript history requests
type Transcripts struct {
	repo   repositories.TranscriptRepository
	recent RecentLister
	logger *zap.Logger
}

// NewTranscriptsHandler creates a new transcripts handler. recent may be nil.
func NewTranscriptsHandler(repo repositories.TranscriptRepository, recent RecentLister, logger *zap.Logger) *Transcripts {
	return &Transcripts{repo: repo, recent: recent, logger: logger}
}

// List handles GET /transcripts
// @Summary      Recent transcripts
// @Description  Returns the most recent transcript records, newest first
// @Tags         Transcripts
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of records (1-500)"  default(50)
// @Success      200    {object}  transcript.ListTranscriptsResponse
// @Failure      400    {object}  map[string]interface{}  "Invalid limit"
// @Failure      500    {object}  map[string]interface{}  "Store unavailable"
// @Router       /transcripts [get]
func (h *Transcripts) List(c echo.Context) error {
	var req transcript.ListTranscriptsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		appErr := errors.ErrInvalidArgument("limit must be between 1 and 500")
		for field, rule := range validator.FieldErrors(err) {
			appErr = appErr.WithDetail(field, rule)
		}
		return HandleError(h.logger, c, appErr)
	}
	limit := req.EffectiveLimit()

	records, err := h.repo.ListRecent(c.Request().Context(), limit)
	if err != nil {
		if h.recent == nil {
			return HandleError(h.logger, c, errors.ErrStoreFailed("list transcripts", err))
		}
		if h.logger != nil {
			h.logger.Warn("Store unavailable, serving recent records", zap.Error(err))
		}
		return HandleSuccess(h.logger, c, presenter.ToListTranscriptsResponse(h.recent.List(limit), transcript.SourceRecent))
	}

	return HandleSuccess(h.logger, c, presenter.ToListTranscriptsResponse(records, transcript.SourceStore))
}
