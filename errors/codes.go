package errors

// ErrorCode identifies an application error in API responses
type ErrorCode int

const (
	ErrorCode_HTTP_OK          ErrorCode = 200
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1003

	// Pipeline
	ErrorCode_PIPELINE_ALREADY_RUNNING ErrorCode = 2000
	ErrorCode_PIPELINE_NOT_RUNNING     ErrorCode = 2001
	ErrorCode_PIPELINE_START_FAILED    ErrorCode = 2002
	ErrorCode_PIPELINE_STOP_FAILED     ErrorCode = 2003
	ErrorCode_LOCATOR_RESOLUTION       ErrorCode = 2004
	ErrorCode_CAPTURE_FAILED           ErrorCode = 2005

	// Integrations
	ErrorCode_INTEGRATION_STORE_FAILED     ErrorCode = 3000
	ErrorCode_INTEGRATION_BROADCAST_FAILED ErrorCode = 3001
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                      "HTTP_OK",
	ErrorCode_INTERNAL:                     "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:             "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                    "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:              "INVALID_PAYLOAD",
	ErrorCode_PIPELINE_ALREADY_RUNNING:     "PIPELINE_ALREADY_RUNNING",
	ErrorCode_PIPELINE_NOT_RUNNING:         "PIPELINE_NOT_RUNNING",
	ErrorCode_PIPELINE_START_FAILED:        "PIPELINE_START_FAILED",
	ErrorCode_PIPELINE_STOP_FAILED:         "PIPELINE_STOP_FAILED",
	ErrorCode_LOCATOR_RESOLUTION:           "LOCATOR_RESOLUTION",
	ErrorCode_CAPTURE_FAILED:               "CAPTURE_FAILED",
	ErrorCode_INTEGRATION_STORE_FAILED:     "INTEGRATION_STORE_FAILED",
	ErrorCode_INTEGRATION_BROADCAST_FAILED: "INTEGRATION_BROADCAST_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
