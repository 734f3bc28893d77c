package diagnosis

import "fmt"

// DiagnosisError is a typed service error with a stable code.
type DiagnosisError struct {
	Code    string
	Message string
}

func (e *DiagnosisError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrNoCandidates means the matcher could not clear the relevance threshold.
// Recoverable: the customer is prompted for more detail.
var ErrNoCandidates = &DiagnosisError{
	Code:    "noCandidatesFound",
	Message: "no service problem cleared the relevance threshold",
}

// ErrSessionNotFound means the session id is unknown or the session expired.
var ErrSessionNotFound = &DiagnosisError{
	Code:    "sessionNotFound",
	Message: "diagnosis session not found or expired",
}

// ErrSessionTerminal means the session already reached a terminal stage and
// can only be restarted with a fresh intake.
var ErrSessionTerminal = &DiagnosisError{
	Code:    "sessionTerminal",
	Message: "diagnosis session already finalized; start a new session",
}
