package errors

import "fmt"

// ErrorCode identifies a specific failure condition in driftwatch.
type ErrorCode int

const (
	ErrCodeUnknown       ErrorCode = 1000
	ErrCodeConfigInvalid ErrorCode = 1001
	ErrCodePIDUnreadable ErrorCode = 1002

	// Oracle
	ErrCodeManifestMissing   ErrorCode = 2001
	ErrCodeManifestMalformed ErrorCode = 2002
	ErrCodeRegistryFailed    ErrorCode = 2003

	// Console
	ErrCodeConsoleDelivery ErrorCode = 3001

	// Termination
	ErrCodeTerminateFailed ErrorCode = 4001

	// Extension signal
	ErrCodeSignalSetup ErrorCode = 5001
)

// DriftwatchError carries structured error information: a stable code,
// the operation that failed, and the underlying cause.
type DriftwatchError struct {
	// Code is the specific error code.
	Code ErrorCode
	// Msg is a human-readable description of the error.
	Msg string
	// Operation describes the action being performed when the error occurred.
	Operation string
	// Err is the underlying error that caused this error, if any.
	Err error
}

// Error returns a formatted string representation of the error.
func (e *DriftwatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %s (cause: %v)", e.Code, e.Operation, e.Msg, e.Err)
	}
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Operation, e.Msg)
}

// Unwrap returns the underlying error.
func (e *DriftwatchError) Unwrap() error {
	return e.Err
}

// New creates a DriftwatchError with the given code, operation, message
// and underlying error.
func New(code ErrorCode, op, msg string, err error) error {
	return &DriftwatchError{
		Code:      code,
		Msg:       msg,
		Operation: op,
		Err:       err,
	}
}

// CodeOf extracts the ErrorCode from err, or ErrCodeUnknown if err is
// not a DriftwatchError.
func CodeOf(err error) ErrorCode {
	if de, ok := err.(*DriftwatchError); ok {
		return de.Code
	}
	return ErrCodeUnknown
}
