package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the application error type rendered by the HTTP layer
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying error to errors.Is / errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

// Pipeline Errors
func ErrPipelineAlreadyRunning(state string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_PIPELINE_ALREADY_RUNNING,
		Message:  "Pipeline is already running",
	}.WithDetail("state", state)
}

func ErrPipelineNotRunning(state string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_PIPELINE_NOT_RUNNING,
		Message:  "Pipeline is not running",
	}.WithDetail("state", state)
}

func ErrLocatorResolution(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_LOCATOR_RESOLUTION,
		Message:  "Could not obtain a stream locator",
	}
}

func ErrCaptureFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_CAPTURE_FAILED,
		Message:  "Stream capture failed",
	}
}

func ErrPipelineStartFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_PIPELINE_START_FAILED,
		Message:  "Failed to start pipeline",
	}
}

func ErrPipelineStopFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_PIPELINE_STOP_FAILED,
		Message:  "Failed to stop pipeline",
	}
}

// Integration Errors
func ErrStoreFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_STORE_FAILED,
		Message:  fmt.Sprintf("Store operation failed: %s", operation),
	}
}

func ErrBroadcastFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_INTEGRATION_BROADCAST_FAILED,
		Message:  "Real-time channel unavailable",
	}
}
