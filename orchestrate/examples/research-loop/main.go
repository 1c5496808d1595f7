package main

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tailored-agentic-units/flow/observability"
	"github.com/tailored-agentic-units/flow/orchestrate/config"
	"github.com/tailored-agentic-units/flow/orchestrate/flow"
)

// corpus stands in for a search backend with uneven latency.
var corpus = map[string]struct {
	latency time.Duration
	answer  string
}{
	"go channels":    {latency: 120 * time.Millisecond, answer: "typed conduits between goroutines"},
	"go generics":    {latency: 60 * time.Millisecond, answer: "type parameters since Go 1.18"},
	"go iterators":   {latency: 10 * time.Millisecond, answer: "range-over-func since Go 1.23"},
	"go select":      {latency: 40 * time.Millisecond, answer: "waits on multiple channel operations"},
	"go unreachable": {latency: 5 * time.Millisecond},
}

var errUnavailable = errors.New("search backend unavailable")

type research struct {
	round int
}

func (r *research) Produce(ctx context.Context, s *flow.Store) (iter.Seq[string], error) {
	pending, _ := flow.Lookup[[]string](s, "pending")
	return flow.Each(pending...), nil
}

func (r *research) Process(ctx context.Context, s *flow.Store, query string) (string, error) {
	entry, ok := corpus[query]
	if !ok {
		return "", flow.Permanent(fmt.Errorf("unknown query %q", query))
	}

	select {
	case <-time.After(entry.latency):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	// a third of calls fail and are retried
	if entry.answer == "" || rand.IntN(3) == 0 {
		return "", errUnavailable
	}
	return entry.answer, nil
}

func (r *research) Degrade(ctx context.Context, s *flow.Store, query string, err error) (string, error) {
	return "", nil
}

func (r *research) OnFailure(ctx context.Context, err error, attempt, maxAttempts int) {
	fmt.Printf("   retrying after attempt %d/%d: %v\n", attempt, maxAttempts, err)
}

func (r *research) Aggregate(ctx context.Context, s *flow.Store, queries, answers []string) (flow.Action, error) {
	r.round++
	limit, _ := flow.ParamsFrom(ctx)["rounds"].(int)

	var unanswered []string
	for i, query := range queries {
		if answers[i] == "" {
			unanswered = append(unanswered, query)
			continue
		}
		s.Update("answers", func(current any, _ bool) any {
			found, _ := current.(map[string]string)
			if found == nil {
				found = make(map[string]string)
			}
			found[query] = answers[i]
			return found
		})
	}

	fmt.Printf("   round %d: %d answered, %d pending (completion order: %s)\n",
		r.round, len(queries)-len(unanswered), len(unanswered), strings.Join(queries, ", "))

	s.Set("pending", unanswered)
	if len(unanswered) > 0 && r.round < limit {
		return flow.Act("search"), nil
	}
	return flow.NoAction, nil
}

func main() {
	ctx := context.Background()

	fmt.Println("=== Research Loop ===")
	fmt.Println("Demonstrating: streaming fan-out, retry with degrade, and a self-loop")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	var degraded atomic.Int32
	observer := observability.NewMultiObserver(
		observability.NewSlogObserver(logger),
		observability.ObserverFunc(func(ctx context.Context, event observability.Event) {
			if event.Type == flow.EventItemDegrade {
				degraded.Add(1)
			}
		}),
	)

	cfg := config.DefaultFlowConfig("research-loop")
	cfg.MaxCycles = 10

	f, err := flow.NewWithObserver[*flow.Store](cfg, observer)
	if err != nil {
		log.Fatalf("Failed to create flow: %v", err)
	}

	search := flow.NewNode[*flow.Store, string, string]("search", &research{},
		flow.WithMaxAttempts(2),
		flow.WithWait(20*time.Millisecond),
		flow.WithTimeout(time.Second),
		flow.WithParams(map[string]any{"rounds": 3}),
	)

	summary := flow.NewFuncNode("summary", flow.Funcs[*flow.Store, string, string]{
		ProduceFn: func(ctx context.Context, s *flow.Store) (iter.Seq[string], error) {
			return flow.None[string](), nil
		},
		AggregateFn: func(ctx context.Context, s *flow.Store, _, _ []string) (flow.Action, error) {
			found, _ := flow.Lookup[map[string]string](s, "answers")
			pending, _ := flow.Lookup[[]string](s, "pending")

			fmt.Println()
			fmt.Println("2. Answers:")
			for query, answer := range found {
				fmt.Printf("   %s: %s\n", query, answer)
			}
			if len(pending) > 0 {
				fmt.Printf("   unanswered: %s\n", strings.Join(pending, ", "))
			}
			return flow.Stop, nil
		},
	})

	search.ConnectOn("search", search).Connect(summary)

	queries := make([]string, 0, len(corpus))
	for query := range corpus {
		queries = append(queries, query)
	}
	store := flow.NewStore(map[string]any{"pending": queries})

	fmt.Println("1. Searching...")
	result, err := f.Run(ctx, search, store)
	if err != nil {
		log.Fatalf("Research loop failed: %v", err)
	}

	fmt.Println()
	fmt.Printf("3. Run %s finished after %d cycles: %s\n", result.RunID, result.Cycles, strings.Join(result.Path, " -> "))
	fmt.Printf("   %d queries degraded to an empty answer\n", degraded.Load())
}
