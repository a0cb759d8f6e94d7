package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInternalError = errors.New("internal server error")
)

// Pipeline control errors
var (
	ErrPipelineAlreadyRunning = errors.New("pipeline already running")
	ErrPipelineNotRunning     = errors.New("pipeline not running")
)
