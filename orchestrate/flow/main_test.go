package flow_test

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/tailored-agentic-units/flow/observability"
	"github.com/tailored-agentic-units/flow/orchestrate/config"
	"github.com/tailored-agentic-units/flow/orchestrate/flow"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type captureObserver struct {
	mu     sync.Mutex
	events []observability.Event
}

func (o *captureObserver) OnEvent(ctx context.Context, event observability.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.events = append(o.events, event)
}

func newCaptureObserver() *captureObserver {
	return &captureObserver{events: []observability.Event{}}
}

func (o *captureObserver) Events() []observability.Event {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]observability.Event(nil), o.events...)
}

func (o *captureObserver) Count(eventType observability.EventType) int {
	count := 0
	for _, event := range o.Events() {
		if event.Type == eventType {
			count++
		}
	}
	return count
}

func newTestFlow(t *testing.T, cfg config.FlowConfig) (*flow.Flow[*flow.Store], *captureObserver) {
	t.Helper()

	observer := newCaptureObserver()
	f, err := flow.NewWithObserver[*flow.Store](cfg, observer)
	if err != nil {
		t.Fatalf("failed to create flow: %v", err)
	}
	return f, observer
}
