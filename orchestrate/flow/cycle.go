package flow

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/tailored-agentic-units/flow/observability"
	"github.com/tailored-agentic-units/flow/orchestrate/config"
)

// cycleEnv carries the traversal-wide settings a node needs to run one
// cycle.
type cycleEnv struct {
	flow           string
	runID          string
	observer       observability.Observer
	ordering       config.Ordering
	maxConcurrency int
	failFast       bool
}

func (e *cycleEnv) emit(ctx context.Context, eventType observability.EventType, level observability.Level, data map[string]any) {
	if data == nil {
		data = make(map[string]any, 1)
	}
	data["run_id"] = e.runID

	e.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    e.flow,
		Data:      data,
	})
}

// runCycle executes produce, the streaming fan-out of process pipelines,
// the join barrier, and aggregate. The aggregate step runs only when every
// pipeline produced a result.
func (n *Node[S, I, R]) runCycle(ctx context.Context, env *cycleEnv, store S) (Action, error) {
	ctx = withParams(ctx, n.Params())

	cycleCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	seq, err := n.produce(cycleCtx, store)
	if err != nil {
		return NoAction, fmt.Errorf("produce failed: %w", err)
	}
	if seq == nil {
		seq = None[I]()
	}

	items, results, err := n.fanOut(cycleCtx, cancel, env, store, seq)
	if err != nil {
		return NoAction, err
	}

	action, err := n.aggregate(ctx, store, items, results)
	if err != nil {
		return NoAction, fmt.Errorf("aggregate failed: %w", err)
	}
	return action, nil
}

// fanOut pulls items from seq one at a time and launches a pipeline for
// each as soon as it is pulled, until seq is exhausted. A failed pipeline
// does not affect its siblings; the first failure is returned after every
// launched pipeline has finished. With fail-fast enabled, the first
// failure cancels ctx instead, which stops pulling and signals running
// siblings to wind down.
// Pulling also stops when the caller's context is done.
func (n *Node[S, I, R]) fanOut(
	ctx context.Context,
	cancel context.CancelFunc,
	env *cycleEnv,
	store S,
	seq iter.Seq[I],
) ([]I, []R, error) {
	c := newCollector[I, R](env.ordering)

	p := pool.New().WithContext(ctx)
	if env.maxConcurrency > 0 {
		p = p.WithMaxGoroutines(env.maxConcurrency)
	}

	index := 0
	for item := range seq {
		if ctx.Err() != nil {
			break
		}

		i := index
		index++
		slot := c.reserve()

		p.Go(func(ctx context.Context) error {
			result, err := n.runPipeline(ctx, env, store, i, item)
			if err != nil {
				c.fail(err)
				if env.failFast {
					cancel()
				}
				return err
			}
			c.add(slot, item, result)
			return nil
		})
	}

	waitErr := p.Wait()
	if err := c.failure(); err != nil {
		return nil, nil, err
	}
	if waitErr != nil {
		return nil, nil, waitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	return c.items, c.results, nil
}

func (n *Node[S, I, R]) runPipeline(ctx context.Context, env *cycleEnv, store S, index int, item I) (R, error) {
	start := time.Now()
	env.emit(ctx, EventItemStart, observability.LevelVerbose, map[string]any{
		"node":  n.name,
		"index": index,
	})

	result, err := n.processItem(ctx, env, store, index, item)
	if err != nil {
		return result, err
	}

	env.emit(ctx, EventItemComplete, observability.LevelVerbose, map[string]any{
		"node":                    n.name,
		"index":                   index,
		observability.DurationKey: time.Since(start),
	})
	return result, nil
}

// collector gathers the (item, result) pairs of one cycle. Each pair is
// written under a single lock so items[i] and results[i] always belong to
// the same pipeline.
type collector[I, R any] struct {
	mu         sync.Mutex
	production bool
	items      []I
	results    []R
	err        error
}

func newCollector[I, R any](ordering config.Ordering) *collector[I, R] {
	return &collector[I, R]{
		production: ordering == config.OrderProduction,
		items:      []I{},
		results:    []R{},
	}
}

// reserve claims the slot for the next produced item. Slots are only
// meaningful with production ordering.
func (c *collector[I, R]) reserve() int {
	if !c.production {
		return -1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var item I
	var result R
	c.items = append(c.items, item)
	c.results = append(c.results, result)
	return len(c.items) - 1
}

func (c *collector[I, R]) add(slot int, item I, result R) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.production {
		c.items[slot] = item
		c.results[slot] = result
		return
	}
	c.items = append(c.items, item)
	c.results = append(c.results, result)
}

// fail records the first pipeline failure of the cycle.
func (c *collector[I, R]) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err == nil {
		c.err = err
	}
}

func (c *collector[I, R]) failure() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.err
}
