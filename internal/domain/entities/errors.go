package entities

import "errors"

// Pipeline error taxonomy
var (
	ErrResolutionFailed           = errors.New("locator resolution failed")
	ErrCaptureProcessExited       = errors.New("capture process exited")
	ErrCaptureAlreadyRunning      = errors.New("capture process already running")
	ErrSegmentTranscriptionFailed = errors.New("segment transcription failed")
	ErrSummarizationFailed        = errors.New("summarization failed")
	ErrSinkWriteFailed            = errors.New("sink write failed")
	ErrEmptyTranscript            = errors.New("transcript is empty")
)
