// Package flow provides a minimal dataflow engine for chaining stateful
// processing units into a directed graph.
//
// Every node runs the same three-phase cycle over a store shared by the
// whole traversal:
//
//	produce   -> a lazy sequence of items
//	process   -> one retried pipeline per item, all running in parallel
//	aggregate -> the collected results, returning the routing action
//
// # Units and Nodes
//
// A Unit supplies the three phases. Units may also implement Degrader, to
// substitute a result for an item whose every attempt failed, and
// FailureHook, to observe failed attempts before the retry wait. Funcs
// builds a unit from plain functions.
//
//	summarize := flow.NewFuncNode("summarize", flow.Funcs[*flow.Store, string, int]{
//	    ProduceFn: func(ctx context.Context, s *flow.Store) (iter.Seq[string], error) {
//	        docs, _ := flow.Lookup[[]string](s, "docs")
//	        return flow.Each(docs...), nil
//	    },
//	    ProcessFn: func(ctx context.Context, s *flow.Store, doc string) (int, error) {
//	        return len(strings.Fields(doc)), nil
//	    },
//	    AggregateFn: func(ctx context.Context, s *flow.Store, docs []string, words []int) (flow.Action, error) {
//	        s.Set("words", words)
//	        return flow.Stop, nil
//	    },
//	}, flow.WithMaxAttempts(3), flow.WithWait(100*time.Millisecond))
//
// # Streaming Fan-out
//
// Items are pulled from the sequence one at a time and each pulled item
// immediately gets its own pipeline, so processing overlaps with the
// production of later items. The aggregate step runs after every pipeline
// has finished. With the default completion ordering, items and results
// are delivered in the order pipelines finished; items[i] and results[i]
// always belong together. Production ordering keeps the order items were
// produced instead.
//
// # Retry
//
// Each pipeline attempts the process step up to the node's MaxAttempts,
// waiting Wait between attempts, each attempt bounded by Timeout when one
// is set. If every attempt fails, the degrade step supplies the result;
// without one the cycle fails with a *ProcessError, the aggregate step is
// skipped, and the traversal aborts. The failing cycle still pulls every
// item and waits for its other pipelines; FlowConfig.FailFast cuts the
// cycle short at the first failure instead.
//
// # Routing
//
// The aggregate step returns an Action. Stop ends the traversal. A named
// action follows its edge, falling back to the "default" edge; NoAction
// follows the default edge. An action that resolves to no edge ends the
// traversal without error.
//
//	search.ConnectOn("answer", answer).ConnectOn("search", search)
//	result, err := flow.Run(ctx, search, store)
//
// Self-loops and cycles run iteratively; FlowConfig.MaxCycles bounds them
// when set.
//
// # Observability
//
// Flows emit events for traversals, cycles, pipelines, failed attempts,
// and routing decisions through an observability.Observer. Event data
// never carries items or store contents.
package flow
