package flow

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/flow/observability"
	"github.com/tailored-agentic-units/flow/orchestrate/config"
)

// StopReason describes how a traversal ended without error.
type StopReason string

const (
	// StopTerminal means a node's aggregate step returned Stop.
	StopTerminal StopReason = "terminal"

	// StopDeadEnd means a node's action resolved to no edge.
	StopDeadEnd StopReason = "dead_end"
)

// Result summarizes a traversal.
type Result struct {
	// RunID identifies the traversal in emitted events
	RunID string

	// Path lists node names in execution order; revisited nodes repeat
	Path []string

	// Cycles is the number of node cycles started
	Cycles int

	// Reason is set when the traversal ended without error
	Reason StopReason
}

// Flow executes traversals under a fixed configuration. A Flow holds no
// per-traversal state and may run any number of traversals concurrently.
type Flow[S any] struct {
	name           string
	observer       observability.Observer
	maxConcurrency int
	maxCycles      int
	ordering       config.Ordering
	failFast       bool
}

// New creates a Flow from configuration, resolving the observer by name
// from the observability registry.
func New[S any](cfg config.FlowConfig) (*Flow[S], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flow config: %w", err)
	}
	merged := defaultedConfig(cfg)

	observer, err := observability.GetObserver(merged.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	return NewWithObserver[S](merged, observer)
}

// NewWithObserver creates a Flow with an explicit observer instance,
// ignoring cfg.Observer. A nil observer disables events.
func NewWithObserver[S any](cfg config.FlowConfig, observer observability.Observer) (*Flow[S], error) {
	// Merge skips non-positive values, so the caller's config is
	// validated before defaults are applied.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flow config: %w", err)
	}
	merged := defaultedConfig(cfg)

	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	return &Flow[S]{
		name:           merged.Name,
		observer:       observer,
		maxConcurrency: merged.MaxConcurrency,
		maxCycles:      merged.MaxCycles,
		ordering:       merged.Ordering,
		failFast:       merged.FailFast,
	}, nil
}

func defaultedConfig(cfg config.FlowConfig) config.FlowConfig {
	merged := config.DefaultFlowConfig("flow")
	merged.Merge(&cfg)
	return merged
}

// Run executes a traversal from start with the default configuration.
//
// Example:
//
//	store := flow.NewStore(map[string]any{"queries": []string{"a", "b", "c"}})
//	result, err := flow.Run(ctx, search, store)
//	if err != nil {
//	    var execErr *flow.ExecutionError
//	    if errors.As(err, &execErr) {
//	        log.Printf("failed at %s after %v", execErr.Node, execErr.Path)
//	    }
//	    return err
//	}
//	log.Printf("run %s: %d cycles, %s", result.RunID, result.Cycles, result.Reason)
func Run[S any](ctx context.Context, start Step[S], store S) (*Result, error) {
	f, err := New[S](config.DefaultFlowConfig("flow"))
	if err != nil {
		return nil, err
	}
	return f.Run(ctx, start, store)
}

// Run executes a traversal from start, sharing store with every node.
//
// Each iteration runs one cycle of the current node and routes on its
// action: Stop ends the traversal, an action with no matching or default
// edge ends it silently, and anything else continues with the resolved
// node. Loops and self-edges are iterated, never recursed into, so their
// depth is bounded only by MaxCycles.
//
// On failure Run returns an *ExecutionError together with the partial
// Result. Store mutations made before the failure are kept.
func (f *Flow[S]) Run(ctx context.Context, start Step[S], store S) (*Result, error) {
	if start == nil {
		return nil, ErrNilStep
	}

	env := &cycleEnv{
		flow:           f.name,
		runID:          uuid.NewString(),
		observer:       f.observer,
		ordering:       f.ordering,
		maxConcurrency: f.maxConcurrency,
		failFast:       f.failFast,
	}

	result := &Result{RunID: env.runID}
	visited := make(map[string]int)
	runStart := time.Now()

	env.emit(ctx, EventFlowStart, observability.LevelInfo, map[string]any{
		"start_node": start.Name(),
	})

	current := start
	for {
		if err := ctx.Err(); err != nil {
			return result, f.fail(ctx, env, result, current.Name(), fmt.Errorf("traversal cancelled: %w", err))
		}

		if f.maxCycles > 0 && result.Cycles >= f.maxCycles {
			return result, f.fail(ctx, env, result, current.Name(), fmt.Errorf("%w: limit %d", ErrMaxCycles, f.maxCycles))
		}

		name := current.Name()
		result.Cycles++
		result.Path = append(result.Path, name)

		visited[name]++
		if visited[name] > 1 {
			env.emit(ctx, EventCycleRevisit, observability.LevelVerbose, map[string]any{
				"node":  name,
				"visit": visited[name],
			})
		}

		env.emit(ctx, EventCycleStart, observability.LevelVerbose, map[string]any{
			"node":  name,
			"cycle": result.Cycles,
		})

		cycleStart := time.Now()
		action, err := current.runCycle(ctx, env, store)
		if err != nil {
			return result, f.fail(ctx, env, result, name, err)
		}

		env.emit(ctx, EventCycleComplete, observability.LevelVerbose, map[string]any{
			"node":                    name,
			"cycle":                   result.Cycles,
			"action":                  action.String(),
			observability.DurationKey: time.Since(cycleStart),
		})

		if action.IsStop() {
			return result, f.complete(ctx, env, result, StopTerminal, runStart)
		}

		next := current.Successor(action)
		if next == nil {
			env.emit(ctx, EventEdgeDeadEnd, observability.LevelInfo, map[string]any{
				"node":   name,
				"action": action.String(),
			})
			return result, f.complete(ctx, env, result, StopDeadEnd, runStart)
		}

		env.emit(ctx, EventEdgeTransition, observability.LevelVerbose, map[string]any{
			"from":   name,
			"to":     next.Name(),
			"action": action.String(),
		})

		current = next
	}
}

func (f *Flow[S]) complete(ctx context.Context, env *cycleEnv, result *Result, reason StopReason, start time.Time) error {
	result.Reason = reason

	env.emit(ctx, EventFlowComplete, observability.LevelInfo, map[string]any{
		"cycles":                  result.Cycles,
		"reason":                  string(reason),
		"path_length":             len(result.Path),
		observability.DurationKey: time.Since(start),
	})
	return nil
}

func (f *Flow[S]) fail(ctx context.Context, env *cycleEnv, result *Result, node string, err error) error {
	env.emit(ctx, EventFlowFailed, observability.LevelError, map[string]any{
		"node":   node,
		"cycles": result.Cycles,
		"error":  err.Error(),
	})

	return &ExecutionError{
		Node:  node,
		RunID: result.RunID,
		Path:  slices.Clone(result.Path),
		Err:   err,
	}
}
