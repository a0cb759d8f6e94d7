package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/errors"
	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/monitor-agent/internal/usecase/errors"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger.
// Errors that are not AppErrors are reported as internal errors.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) {
		appErr = errors.ErrInternal(err)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Any("app_code", appErr.Code),
			zap.Error(err),
		)
	}

	info := ""
	if appErr.Raw != nil {
		info = appErr.Raw.Error()
	}

	body := errs{
		Code:    appErr.Code,
		Message: appErr.Message,
		Info:    info,
		Details: appErr.Details,
	}

	return c.JSON(appErr.HTTPCode, body)
}

// startError maps a pipeline start failure to its API error
func startError(err error, state string) errors.AppError {
	switch {
	case stdErrors.Is(err, usecaseErrors.ErrPipelineAlreadyRunning):
		return errors.ErrPipelineAlreadyRunning(state)
	case stdErrors.Is(err, entities.ErrResolutionFailed):
		return errors.ErrLocatorResolution(err)
	case stdErrors.Is(err, entities.ErrCaptureAlreadyRunning):
		return errors.ErrCaptureFailed(err)
	default:
		return errors.ErrPipelineStartFailed(err)
	}
}

// stopError maps a pipeline stop failure to its API error
func stopError(err error, state string) errors.AppError {
	if stdErrors.Is(err, usecaseErrors.ErrPipelineNotRunning) {
		return errors.ErrPipelineNotRunning(state)
	}
	return errors.ErrPipelineStopFailed(err)
}
