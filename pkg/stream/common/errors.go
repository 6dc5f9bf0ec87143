package common

// CaptureError represents capture-layer errors. They are fatal to the
// current streaming session; the estimator returns to idle and requires an
// explicit restart.
type CaptureError struct {
	Source  string `json:"source"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *CaptureError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *CaptureError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeOpen          = "OPEN_FAILED"
	ErrCodeRead          = "READ_FAILED"
	ErrCodeInvalidFormat = "INVALID_FORMAT"
	ErrCodeClosed        = "SOURCE_CLOSED"
)

// NewCaptureError creates a new capture error
func NewCaptureError(source, code, message string, cause error) *CaptureError {
	return &CaptureError{
		Source:  source,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
