package observability

import "context"

// MultiObserver forwards each event to several observers in turn. A slow
// member delays the emitting pipeline, so members should return quickly.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver combines observers, dropping nil entries and
// flattening nested MultiObservers so each event is dispatched in a
// single pass.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	m := &MultiObserver{observers: make([]Observer, 0, len(observers))}
	for _, obs := range observers {
		switch o := obs.(type) {
		case nil:
		case *MultiObserver:
			if o != nil {
				m.observers = append(m.observers, o.observers...)
			}
		default:
			m.observers = append(m.observers, o)
		}
	}
	return m
}

// Len reports how many observers receive each event.
func (m *MultiObserver) Len() int {
	return len(m.observers)
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}
