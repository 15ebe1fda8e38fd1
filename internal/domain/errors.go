package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error codes returned in API error envelopes.
const (
	ErrCodeInvalidReading      = "INVALID_READING"
	ErrCodeHardwareUnavailable = "HARDWARE_UNAVAILABLE"
	ErrCodeDetectorFailure     = "DETECTOR_FAILURE"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeRateLimit           = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalServer      = "INTERNAL_SERVER_ERROR"
)

// HardwareUnavailableError indicates the sensor provider could not produce
// a reading. It is fatal to the request: the engine must not run and no
// degraded verdict may be substituted.
type HardwareUnavailableError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *HardwareUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sensor hardware unavailable: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("sensor hardware unavailable: %s", e.Reason)
}

// Unwrap returns the underlying cause.
func (e *HardwareUnavailableError) Unwrap() error { return e.Err }

// NewHardwareUnavailable creates a HardwareUnavailableError.
func NewHardwareUnavailable(reason string, err error) *HardwareUnavailableError {
	return &HardwareUnavailableError{Reason: reason, Err: err}
}

// IsHardwareUnavailable reports whether err is a sensor hardware failure.
func IsHardwareUnavailable(err error) bool {
	var hw *HardwareUnavailableError
	return errors.As(err, &hw)
}

// DetectorError indicates the vision path failed. It is recovered one layer
// below the engine: evaluation proceeds sensor-only and the error is never
// surfaced as a request failure.
type DetectorError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *DetectorError) Error() string {
	return fmt.Sprintf("detector %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DetectorError) Unwrap() error { return e.Err }

// NewDetectorError creates a DetectorError for the given operation.
func NewDetectorError(op string, err error) *DetectorError {
	return &DetectorError{Op: op, Err: err}
}

// InvalidReadingError indicates a physiologically impossible sensor reading
// reached the boundary. Rejected, never clamped.
type InvalidReadingError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *InvalidReadingError) Error() string {
	return fmt.Sprintf("invalid reading: field '%s': %s", e.Field, e.Message)
}

// NewInvalidReading creates an InvalidReadingError.
func NewInvalidReading(field, message string, value any) *InvalidReadingError {
	return &InvalidReadingError{Field: field, Message: message, Value: value}
}

// IsInvalidReading reports whether err is a reading validation failure.
func IsInvalidReading(err error) bool {
	var ir *InvalidReadingError
	return errors.As(err, &ir)
}

// APIError is the standardized error envelope returned by the HTTP boundary.
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a new APIError stamped with the current UTC time.
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}
