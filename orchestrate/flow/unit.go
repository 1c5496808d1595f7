package flow

import (
	"context"
	"iter"
)

// Unit is the processing contract every node wraps. A node's cycle runs
// Produce once, Process once per produced item (concurrently, with
// retry), and Aggregate once over the collected results.
//
// The engine never inspects a unit's internals; its behavior is driven
// solely by the values and errors these methods return.
//
// Type parameters:
//   - S: the store shared by every node of a traversal
//   - I: the item type produced and processed by this unit
//   - R: the result type returned by Process
type Unit[S, I, R any] interface {
	// Produce returns the lazy, finite item sequence for one cycle. A fresh
	// sequence is requested every cycle and is consumed exactly once.
	Produce(ctx context.Context, store S) (iter.Seq[I], error)

	// Process performs the unit's work for one item and may fail.
	Process(ctx context.Context, store S, item I) (R, error)

	// Aggregate receives the collected items and their results, aligned by
	// index, and returns the routing action. It is the documented place to
	// write to the store.
	Aggregate(ctx context.Context, store S, items []I, results []R) (Action, error)
}

// Degrader is implemented by units that substitute a result for an item
// whose every process attempt failed. Without it, exhaustion aborts the
// traversal.
type Degrader[S, I, R any] interface {
	Degrade(ctx context.Context, store S, item I, err error) (R, error)
}

// FailureHook is implemented by units that observe failed attempts. It is
// called after each failed attempt that will be retried, before the wait.
// attempt is 1-based.
type FailureHook interface {
	OnFailure(ctx context.Context, err error, attempt, maxAttempts int)
}

// Funcs builds a unit from plain functions, enabling inline node
// definitions without declaring a type.
//
// Missing functions fall back to:
//   - ProduceFn: a single zero-value item
//   - ProcessFn: the zero result
//   - AggregateFn: NoAction
//   - DegradeFn: absent, exhaustion aborts the traversal
//   - OnFailureFn: absent, failures are only reported as events
type Funcs[S, I, R any] struct {
	ProduceFn   func(ctx context.Context, store S) (iter.Seq[I], error)
	ProcessFn   func(ctx context.Context, store S, item I) (R, error)
	AggregateFn func(ctx context.Context, store S, items []I, results []R) (Action, error)
	DegradeFn   func(ctx context.Context, store S, item I, err error) (R, error)
	OnFailureFn func(ctx context.Context, err error, attempt, maxAttempts int)
}

// NewFuncNode creates a node from a Funcs value.
//
// Example:
//
//	echo := flow.NewFuncNode("echo", flow.Funcs[*flow.Store, string, string]{
//	    ProduceFn: func(ctx context.Context, s *flow.Store) (iter.Seq[string], error) {
//	        queries, _ := flow.Lookup[[]string](s, "queries")
//	        return flow.Each(queries...), nil
//	    },
//	    ProcessFn: func(ctx context.Context, s *flow.Store, q string) (string, error) {
//	        return "echo:" + q, nil
//	    },
//	    AggregateFn: func(ctx context.Context, s *flow.Store, qs, answers []string) (flow.Action, error) {
//	        s.Set("answers", answers)
//	        return flow.Stop, nil
//	    },
//	}, flow.WithMaxAttempts(3))
func NewFuncNode[S, I, R any](name string, fns Funcs[S, I, R], opts ...NodeOption) *Node[S, I, R] {
	produce := fns.ProduceFn
	if produce == nil {
		produce = func(context.Context, S) (iter.Seq[I], error) {
			var zero I
			return One(zero), nil
		}
	}

	process := fns.ProcessFn
	if process == nil {
		process = func(context.Context, S, I) (R, error) {
			var zero R
			return zero, nil
		}
	}

	aggregate := fns.AggregateFn
	if aggregate == nil {
		aggregate = func(context.Context, S, []I, []R) (Action, error) {
			return NoAction, nil
		}
	}

	return newNode(name, produce, process, aggregate, fns.DegradeFn, fns.OnFailureFn, opts)
}
