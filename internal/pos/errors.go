package pos

import (
	"errors"
	"fmt"
)

// ErrStaleResult marks a result superseded by a newer table selection or
// sync. It never reaches the notifier.
var ErrStaleResult = errors.New("pos: stale result discarded")

// ValidationError is a local precondition failure; no backend call was made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validation(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// BackendError wraps a failed collaborator call. It is always retryable:
// local state is left as it was before the call.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Temporary() bool { return true }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsBackend(err error) bool {
	var b *BackendError
	return errors.As(err, &b)
}
