package flow

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sourcegraph/conc/panics"

	"github.com/tailored-agentic-units/flow/observability"
)

// Permanent marks err as not worth retrying. A process step returning a
// permanent error skips its remaining attempts and goes straight to the
// degrade step, if any. The error seen by the degrade step and reported in
// ProcessError is err itself.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// processItem runs the process step for one item under the node's retry
// policy. Every attempt but the last reports its failure before waiting;
// exhaustion falls back to the degrade step or fails with a ProcessError.
// Cancellation of ctx is returned as ctx.Err() and is never degraded.
func (n *Node[S, I, R]) processItem(ctx context.Context, env *cycleEnv, store S, index int, item I) (R, error) {
	retry := n.Retry()
	maxAttempts := retry.Attempts()
	timeout := retry.TimeoutDuration()

	var policy backoff.BackOff = backoff.NewConstantBackOff(retry.WaitDuration())
	policy = backoff.WithMaxRetries(policy, uint64(maxAttempts-1))
	policy = backoff.WithContext(policy, ctx)

	attempt := 0
	operation := func() (R, error) {
		attempt++
		result, err := n.attempt(ctx, env, store, index, item, timeout)
		if err != nil && ctx.Err() != nil {
			return result, backoff.Permanent(ctx.Err())
		}
		return result, err
	}

	notify := func(err error, wait time.Duration) {
		env.emit(ctx, EventAttemptFailure, observability.LevelWarning, map[string]any{
			"node":         n.name,
			"index":        index,
			"attempt":      attempt,
			"max_attempts": maxAttempts,
			"wait":         wait.String(),
			"error":        err.Error(),
		})
		if n.onFailure != nil {
			n.onFailure(ctx, err, attempt, maxAttempts)
		}
	}

	result, err := backoff.RetryNotifyWithData(operation, policy, notify)
	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		var zero R
		return zero, ctxErr
	}

	if n.degrade == nil {
		var zero R
		return zero, &ProcessError{Node: n.name, Index: index, Attempts: attempt, Err: err}
	}

	env.emit(ctx, EventItemDegrade, observability.LevelWarning, map[string]any{
		"node":     n.name,
		"index":    index,
		"attempts": attempt,
		"error":    err.Error(),
	})

	result, err = n.degrade(ctx, store, item, err)
	if err != nil {
		var zero R
		return zero, &ProcessError{Node: n.name, Index: index, Attempts: attempt, Degraded: true, Err: err}
	}
	return result, nil
}

// attempt makes a single process call. With a positive timeout the call
// runs under its own deadline; a call still running at the deadline is
// abandoned with ErrAttemptTimeout and its late result is discarded. A
// panic raised by an abandoned call cannot be re-raised on the caller's
// goroutine, so it is reported as an attempt.panic event instead.
func (n *Node[S, I, R]) attempt(ctx context.Context, env *cycleEnv, store S, index int, item I, timeout time.Duration) (R, error) {
	if timeout <= 0 {
		return n.process(ctx, store, item)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result R
		err    error
	}

	var (
		catcher panics.Catcher
		claimed atomic.Bool
	)
	done := make(chan outcome, 1)

	go func() {
		var out outcome
		catcher.Try(func() {
			out.result, out.err = n.process(attemptCtx, store, item)
		})
		if claimed.CompareAndSwap(false, true) {
			done <- out
			return
		}

		// abandoned
		if rec := catcher.Recovered(); rec != nil {
			env.emit(ctx, EventAttemptPanic, observability.LevelError, map[string]any{
				"node":  n.name,
				"index": index,
				"panic": fmt.Sprint(rec.Value),
			})
		}
	}()

	select {
	case out := <-done:
		catcher.Repanic()
		return out.result, out.err
	case <-attemptCtx.Done():
		if !claimed.CompareAndSwap(false, true) {
			// the call finished at the deadline and owns the outcome
			out := <-done
			catcher.Repanic()
			return out.result, out.err
		}
		var zero R
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("%w after %s: %w", ErrAttemptTimeout, timeout, attemptCtx.Err())
	}
}
