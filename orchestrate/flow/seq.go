package flow

import (
	"context"
	"iter"
	"slices"
)

// Each returns a sequence over the given items, in order.
func Each[I any](items ...I) iter.Seq[I] {
	return slices.Values(items)
}

// One returns a sequence holding a single item.
func One[I any](item I) iter.Seq[I] {
	return func(yield func(I) bool) {
		yield(item)
	}
}

// None returns an empty sequence. A cycle over an empty sequence launches
// no pipelines and calls the aggregate step with empty slices.
func None[I any]() iter.Seq[I] {
	return func(func(I) bool) {}
}

// FromChannel returns a sequence that yields values received from ch until
// ch is closed or ctx is done. Use it when items are computed
// asynchronously: each pull blocks until the next value is ready, and
// values already received are processed while later ones are still being
// computed.
//
// Example:
//
//	func (u *crawler) Produce(ctx context.Context, store *flow.Store) (iter.Seq[string], error) {
//	    pages := make(chan string)
//	    go func() {
//	        defer close(pages)
//	        for _, url := range seeds {
//	            select {
//	            case pages <- url:
//	            case <-ctx.Done():
//	                return
//	            }
//	        }
//	    }()
//	    return flow.FromChannel(ctx, pages), nil
//	}
func FromChannel[I any](ctx context.Context, ch <-chan I) iter.Seq[I] {
	return func(yield func(I) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-ch:
				if !ok || !yield(item) {
					return
				}
			}
		}
	}
}
