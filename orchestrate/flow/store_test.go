package flow_test

import (
	"sync"
	"testing"

	"github.com/tailored-agentic-units/flow/orchestrate/flow"
)

func TestNewStore_CopiesInitial(t *testing.T) {
	initial := map[string]any{"a": 1}
	store := flow.NewStore(initial)

	initial["b"] = 2

	if store.Len() != 1 {
		t.Errorf("expected 1 key, got %d", store.Len())
	}

	empty := flow.NewStore(nil)
	if empty.Len() != 0 {
		t.Errorf("expected empty store, got %d keys", empty.Len())
	}
}

func TestStore_GetSetDelete(t *testing.T) {
	store := flow.NewStore(nil)

	store.Set("key", "value")
	val, exists := store.Get("key")
	if !exists || val != "value" {
		t.Errorf("expected value, got %v (exists=%v)", val, exists)
	}

	store.Delete("key")
	if _, exists := store.Get("key"); exists {
		t.Error("expected key to be deleted")
	}

	store.Delete("missing")
}

func TestStore_Snapshot(t *testing.T) {
	store := flow.NewStore(map[string]any{"a": 1})

	snapshot := store.Snapshot()
	snapshot["b"] = 2

	if _, exists := store.Get("b"); exists {
		t.Error("snapshot writes must not reach the store")
	}
}

func TestStore_UpdateConcurrent(t *testing.T) {
	store := flow.NewStore(nil)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Update("hits", func(current any, _ bool) any {
				n, _ := current.(int)
				return n + 1
			})
		}()
	}
	wg.Wait()

	hits, ok := flow.Lookup[int](store, "hits")
	if !ok || hits != 100 {
		t.Errorf("expected 100 hits, got %d (ok=%v)", hits, ok)
	}
}

func TestLookup(t *testing.T) {
	store := flow.NewStore(map[string]any{"count": 3})

	if got, ok := flow.Lookup[int](store, "count"); !ok || got != 3 {
		t.Errorf("expected 3, got %d (ok=%v)", got, ok)
	}

	if _, ok := flow.Lookup[string](store, "count"); ok {
		t.Error("expected type mismatch to report false")
	}

	if _, ok := flow.Lookup[int](store, "missing"); ok {
		t.Error("expected missing key to report false")
	}
}
