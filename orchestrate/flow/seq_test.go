package flow_test

import (
	"context"
	"slices"
	"testing"

	"github.com/tailored-agentic-units/flow/orchestrate/flow"
)

func TestSequences(t *testing.T) {
	if got := slices.Collect(flow.Each("a", "b", "c")); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Each: got %v", got)
	}

	if got := slices.Collect(flow.One(7)); !slices.Equal(got, []int{7}) {
		t.Errorf("One: got %v", got)
	}

	if got := slices.Collect(flow.None[int]()); len(got) != 0 {
		t.Errorf("None: got %v", got)
	}
}

func TestFromChannel(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)

	got := slices.Collect(flow.FromChannel(context.Background(), ch))
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("expected [1 2 3], got %v", got)
	}
}

func TestFromChannel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan int)
	defer close(ch)

	got := slices.Collect(flow.FromChannel(ctx, ch))
	if len(got) != 0 {
		t.Errorf("expected no items, got %v", got)
	}
}

func TestFromChannel_EarlyBreak(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)

	var got []int
	for v := range flow.FromChannel(context.Background(), ch) {
		got = append(got, v)
		if v == 2 {
			break
		}
	}

	if !slices.Equal(got, []int{1, 2}) {
		t.Errorf("expected [1 2], got %v", got)
	}
}
