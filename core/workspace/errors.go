package workspace

import "fmt"

// ValidationError rejects a mutation locally, before any state changes.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func validationErr(op, format string, args ...any) error {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// BackendError wraps a failed backend call. In direct mode the local task
// list is left unmutated; during Apply it marks the partial-apply
// condition.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: backend call failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// StateError flags a call that is invalid in the current edit mode. Stack
// underflow on undo/redo is a silent no-op instead; a StateError always
// indicates a caller bug.
type StateError struct {
	Op   string
	Mode Mode
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: invalid in %s mode", e.Op, e.Mode)
}
