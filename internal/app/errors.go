package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrAlreadyRunning indicates Run was called twice.
	ErrAlreadyRunning = errors.New("application already running")
)

// SetupError is a failure before the session started, while the
// terminal display may not exist yet. It is fatal; the message goes to
// stderr, not the emulated screen.
type SetupError struct {
	Stage string // "link", "display", "logging"
	Err   error
}

// NewSetupError creates a SetupError for the given stage.
func NewSetupError(stage string, err error) *SetupError {
	return &SetupError{Stage: stage, Err: err}
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s setup: %v", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Is matches both the wrapper instance and the wrapped error.
func (e *SetupError) Is(target error) bool {
	if t, ok := target.(*SetupError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}
