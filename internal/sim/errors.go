package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams indicates a parameter set the simulator cannot run with.
	ErrInvalidParams = errors.New("sim: invalid parameters")

	// ErrSetup indicates a host collaborator failed before the first tick.
	ErrSetup = errors.New("sim: setup failed")
)

// ParamError names the offending parameter.
type ParamError struct {
	Field  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("sim: invalid %s: %s", e.Field, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParams }

// SetupError wraps a fatal failure of a host (terminal, listener, storage)
// that aborts the session before any simulation tick.
type SetupError struct {
	Stage string
	Err   error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup %s: %v", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() []error { return []error{ErrSetup, e.Err} }
