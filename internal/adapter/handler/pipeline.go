package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/errors"
	"github.com/johnquangdev/monitor-agent/internal/adapter/dto/pipeline"
	"github.com/johnquangdev/monitor-agent/internal/adapter/presenter"
	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
)

// PipelineController is the control surface of the monitoring pipeline
type PipelineController interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Status() entities.PipelineStatus
}

// Pipeline handles pipeline control requests
type Pipeline struct {
	ctrl   PipelineController
	logger *zap.Logger
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(ctrl PipelineController, logger *zap.Logger) *Pipeline {
	return &Pipeline{ctrl: ctrl, logger: logger}
}

// Start handles POST /pipeline/start
// @Summary      Start monitoring
// @Description  Resolves the stream locator, starts capture and begins transcribing segments
// @Tags         Pipeline
// @Produce      json
// @Success      200  {object}  pipeline.ActionResponse  "Pipeline started"
// @Failure      409  {object}  map[string]interface{}   "Pipeline already running"
// @Failure      502  {object}  map[string]interface{}   "Stream locator could not be resolved"
// @Failure      500  {object}  map[string]interface{}   "Failed to start pipeline"
// @Router       /pipeline/start [post]
func (h *Pipeline) Start(c echo.Context) error {
	// a client that disconnects must not abort the start half way
	if err := h.ctrl.Start(context.WithoutCancel(c.Request().Context())); err != nil {
		return HandleError(h.logger, c, startError(err, h.ctrl.Status().State.String()))
	}
	return HandleSuccess(h.logger, c, pipeline.ActionResponse{Status: "started"})
}

// Stop handles POST /pipeline/stop
// @Summary      Stop monitoring
// @Description  Stops capture and waits for the segment in progress
// @Tags         Pipeline
// @Produce      json
// @Success      200  {object}  pipeline.ActionResponse  "Pipeline stopped"
// @Failure      409  {object}  map[string]interface{}   "Pipeline not running"
// @Router       /pipeline/stop [post]
func (h *Pipeline) Stop(c echo.Context) error {
	// ffmpeg keeps its grace period even if the client goes away
	if err := h.ctrl.Stop(context.WithoutCancel(c.Request().Context())); err != nil {
		return HandleError(h.logger, c, stopError(err, h.ctrl.Status().State.String()))
	}
	return HandleSuccess(h.logger, c, pipeline.ActionResponse{Status: "stopped"})
}

// Status handles GET /pipeline/status
// @Summary      Pipeline status
// @Description  Returns the lifecycle state and counters of the pipeline
// @Tags         Pipeline
// @Produce      json
// @Success      200  {object}  pipeline.StatusResponse
// @Router       /pipeline/status [get]
func (h *Pipeline) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    presenter.ToStatusResponse(h.ctrl.Status(), time.Now().UTC()),
	})
}
