package booking

import "fmt"

// BookingError is a typed service error with a stable code.
type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidTransition rejects a status or selection change that violates the
// service request state machine. The original record stays unchanged.
func NewInvalidTransition(format string, args ...any) error {
	return &BookingError{Code: "invalidTransition", Message: fmt.Sprintf(format, args...)}
}

// NewInvalidBooking rejects malformed booking input before anything is written.
func NewInvalidBooking(format string, args ...any) error {
	return &BookingError{Code: "invalidBooking", Message: fmt.Sprintf(format, args...)}
}

// IsInvalidTransition reports whether err is an invalidTransition error.
func IsInvalidTransition(err error) bool {
	be, ok := err.(*BookingError)
	return ok && be.Code == "invalidTransition"
}
