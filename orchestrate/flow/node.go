package flow

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"sync"
	"time"

	"github.com/tailored-agentic-units/flow/orchestrate/config"
)

// Step is a vertex of a traversal: anything Run can execute and route
// from. *Node is the implementation; the interface erases a node's item
// and result types so nodes of different shapes can be connected.
type Step[S any] interface {
	// Name returns the step identifier used in events, paths and errors
	Name() string

	// Successor resolves the step an action routes to, or nil
	Successor(action Action) Step[S]

	runCycle(ctx context.Context, env *cycleEnv, store S) (Action, error)
}

// NodeOption configures a node at construction.
type NodeOption func(*nodeOptions)

type nodeOptions struct {
	retry  config.RetryConfig
	params map[string]any
}

// WithRetry sets the node's retry policy.
func WithRetry(retry config.RetryConfig) NodeOption {
	return func(o *nodeOptions) {
		o.retry = retry
	}
}

// WithMaxAttempts sets the attempt ceiling (values below 1 mean 1).
func WithMaxAttempts(attempts int) NodeOption {
	return func(o *nodeOptions) {
		o.retry.MaxAttempts = attempts
	}
}

// WithWait sets the delay between attempts.
func WithWait(wait time.Duration) NodeOption {
	return func(o *nodeOptions) {
		o.retry.Wait = config.Duration(wait)
	}
}

// WithTimeout bounds every attempt. An attempt that has not returned
// within the timeout fails with ErrAttemptTimeout and its context is
// cancelled.
func WithTimeout(timeout time.Duration) NodeOption {
	return func(o *nodeOptions) {
		o.retry.Timeout = config.Duration(timeout)
	}
}

// WithParams sets the node's parameter bag.
func WithParams(params map[string]any) NodeOption {
	return func(o *nodeOptions) {
		o.params = params
	}
}

// Node wraps a unit with its routing table, parameters and retry policy.
//
// The edge table is node state, not traversal state: a node may route to
// itself or to an ancestor, and is executed once per visit. Edges and
// params may be changed while a traversal runs; changes apply from the
// next routing decision or cycle.
type Node[S, I, R any] struct {
	name string

	produce   func(ctx context.Context, store S) (iter.Seq[I], error)
	process   func(ctx context.Context, store S, item I) (R, error)
	aggregate func(ctx context.Context, store S, items []I, results []R) (Action, error)
	degrade   func(ctx context.Context, store S, item I, err error) (R, error)
	onFailure func(ctx context.Context, err error, attempt, maxAttempts int)

	mu     sync.RWMutex
	edges  map[string]Step[S]
	params map[string]any
	retry  config.RetryConfig
}

// NewNode creates a node around unit. Optional capabilities are detected
// from the unit's method set: Degrader enables result substitution after
// exhausted retries and FailureHook observes failed attempts.
//
// NewNode panics if unit is nil.
//
// Example:
//
//	search := flow.NewNode("search", &searchUnit{client: c},
//	    flow.WithMaxAttempts(3),
//	    flow.WithWait(500*time.Millisecond),
//	)
//	answer := flow.NewNode("answer", &answerUnit{})
//	search.Connect(answer).ConnectOn("refine", search)
func NewNode[S, I, R any](name string, unit Unit[S, I, R], opts ...NodeOption) *Node[S, I, R] {
	if unit == nil {
		panic(fmt.Sprintf("flow: nil unit for node %q", name))
	}

	var degrade func(context.Context, S, I, error) (R, error)
	if d, ok := unit.(Degrader[S, I, R]); ok {
		degrade = d.Degrade
	}

	var onFailure func(context.Context, error, int, int)
	if h, ok := unit.(FailureHook); ok {
		onFailure = h.OnFailure
	}

	return newNode(name, unit.Produce, unit.Process, unit.Aggregate, degrade, onFailure, opts)
}

func newNode[S, I, R any](
	name string,
	produce func(context.Context, S) (iter.Seq[I], error),
	process func(context.Context, S, I) (R, error),
	aggregate func(context.Context, S, []I, []R) (Action, error),
	degrade func(context.Context, S, I, error) (R, error),
	onFailure func(context.Context, error, int, int),
	opts []NodeOption,
) *Node[S, I, R] {
	options := nodeOptions{retry: config.DefaultRetryConfig()}
	for _, opt := range opts {
		opt(&options)
	}

	return &Node[S, I, R]{
		name:      name,
		produce:   produce,
		process:   process,
		aggregate: aggregate,
		degrade:   degrade,
		onFailure: onFailure,
		edges:     make(map[string]Step[S]),
		params:    options.params,
		retry:     options.retry,
	}
}

// Name returns the node identifier.
func (n *Node[S, I, R]) Name() string {
	return n.name
}

// Connect sets the default edge and returns the node for chaining.
// A nil target removes the default edge.
func (n *Node[S, I, R]) Connect(target Step[S]) *Node[S, I, R] {
	return n.ConnectOn(DefaultAction, target)
}

// ConnectOn sets the edge followed for the named action and returns the
// node for chaining. The last call for an action wins; a nil target
// removes the edge.
func (n *Node[S, I, R]) ConnectOn(action string, target Step[S]) *Node[S, I, R] {
	if action == "" {
		action = DefaultAction
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if target == nil {
		delete(n.edges, action)
		return n
	}
	n.edges[action] = target
	return n
}

// Successor resolves the step an action routes to. Named actions use
// their own edge when one exists and the default edge otherwise; NoAction
// uses the default edge. Stop, or an action with neither edge, resolves
// to nil.
func (n *Node[S, I, R]) Successor(action Action) Step[S] {
	if action.IsStop() {
		return nil
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	if name := action.Name(); name != "" {
		if target, ok := n.edges[name]; ok {
			return target
		}
	}
	return n.edges[DefaultAction]
}

// Edges returns a copy of the node's routing table.
func (n *Node[S, I, R]) Edges() map[string]Step[S] {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return maps.Clone(n.edges)
}

// SetParams replaces the parameter bag and returns the node for chaining.
func (n *Node[S, I, R]) SetParams(params map[string]any) *Node[S, I, R] {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.params = params
	return n
}

// Params returns the node's parameter bag.
func (n *Node[S, I, R]) Params() map[string]any {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.params
}

// SetRetry replaces the retry policy and returns the node for chaining.
func (n *Node[S, I, R]) SetRetry(retry config.RetryConfig) *Node[S, I, R] {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.retry = retry
	return n
}

// Retry returns the node's retry policy.
func (n *Node[S, I, R]) Retry() config.RetryConfig {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.retry
}

type paramsKey struct{}

// ParamsFrom returns the parameter bag of the node whose unit is being
// called with ctx. Every unit call made by the engine carries it.
func ParamsFrom(ctx context.Context) map[string]any {
	params, _ := ctx.Value(paramsKey{}).(map[string]any)
	return params
}

func withParams(ctx context.Context, params map[string]any) context.Context {
	if params == nil {
		return ctx
	}
	return context.WithValue(ctx, paramsKey{}, params)
}
