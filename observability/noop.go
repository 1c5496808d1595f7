package observability

import "context"

// NoOpObserver is the observer a flow falls back to when none is given.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}
