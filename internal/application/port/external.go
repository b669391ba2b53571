package port

import (
	"time"

	"github.com/garyjia/lawdesk/pkg/apperror"
)

// Clock supplies the current time to services
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// OperationRecorder observes the outcome of workflow operations
type OperationRecorder interface {
	// Rejected counts an operation refused with the given error code
	Rejected(operation string, code apperror.Code)
}

// NopRecorder discards observations
type NopRecorder struct{}

// Rejected does nothing
func (NopRecorder) Rejected(string, apperror.Code) {}
