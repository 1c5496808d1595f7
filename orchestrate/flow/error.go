package flow

import (
	"errors"
	"fmt"
)

var (
	// ErrAttemptTimeout marks a process attempt that exceeded its per-attempt timeout.
	ErrAttemptTimeout = errors.New("attempt timed out")

	// ErrMaxCycles marks a traversal stopped by the configured cycle limit.
	ErrMaxCycles = errors.New("max cycles exceeded")

	// ErrNilStep is returned when a traversal is started without a step.
	ErrNilStep = errors.New("step cannot be nil")
)

// ExecutionError captures context when a traversal aborts.
//
// This error type provides execution state for debugging:
//   - Node: Which node's cycle failed
//   - RunID: The traversal identifier reported in events
//   - Path: Node names visited, ending with the failed node
//   - Err: Underlying error (a *ProcessError, a produce/aggregate failure, ctx.Err(), ...)
//
// Store mutations made before the failure are left in place.
type ExecutionError struct {
	Node  string
	RunID string
	Path  []string
	Err   error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed at node %s: %v", e.Node, e.Err)
}

// Unwrap enables error unwrapping for errors.Is and errors.As.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ProcessError reports an item whose processing could not be recovered:
// every attempt failed and the node has no degrade step, or the degrade
// step itself failed.
//
// Example:
//
//	_, err := flow.Run(ctx, start, store)
//	var procErr *flow.ProcessError
//	if errors.As(err, &procErr) {
//	    fmt.Printf("item %d failed after %d attempts\n", procErr.Index, procErr.Attempts)
//	}
type ProcessError struct {
	// Node is the name of the node that processed the item
	Node string

	// Index is the 0-based production index of the item
	Index int

	// Attempts is the number of process attempts made
	Attempts int

	// Degraded is true when the failure came from the degrade step
	Degraded bool

	// Err is the last attempt's error, or the degrade step's error
	Err error
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	if e.Degraded {
		return fmt.Sprintf("node %s: item %d: degrade failed after %d attempts: %v",
			e.Node, e.Index, e.Attempts, e.Err)
	}
	return fmt.Sprintf("node %s: item %d: failed after %d attempts: %v",
		e.Node, e.Index, e.Attempts, e.Err)
}

// Unwrap enables error unwrapping for errors.Is and errors.As.
func (e *ProcessError) Unwrap() error {
	return e.Err
}
