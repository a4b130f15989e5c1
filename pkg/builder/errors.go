package builder

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPrepared is returned by Process and Output before Prepare.
	ErrNotPrepared = errors.New("builder is not prepared")
	// ErrNoOutputDir is returned by Output when no output directory is set.
	ErrNoOutputDir = errors.New("output directory is not set")
)

// PhaseError is a traversal, read or write failure tied to a path.
type PhaseError struct {
	Phase Phase
	Path  string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Phase, e.Path, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// ProcessorError is returned by Process when a processor fails. Processors
// after Index did not run.
type ProcessorError struct {
	Name  string
	Index int
	Err   error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor %d (%s) failed: %v", e.Index, e.Name, e.Err)
}

func (e *ProcessorError) Unwrap() error { return e.Err }
