package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DurationKey is the Data key PrometheusObserver reads to record event
// durations. Values must be time.Duration.
const DurationKey = "duration"

// PrometheusObserver counts events by type and level and records any
// event carrying a DurationKey entry into a duration histogram keyed by
// event type.
type PrometheusObserver struct {
	events    *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusObserver creates a PrometheusObserver and registers its
// collectors with reg under the given namespace. A nil reg registers with
// prometheus.DefaultRegisterer.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	obs, err := observability.NewPrometheusObserver(registry, "flow")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	observability.RegisterObserver("prometheus", obs)
func NewPrometheusObserver(reg prometheus.Registerer, namespace string) (*PrometheusObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PrometheusObserver{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Number of observability events emitted, by event type and level.",
		}, []string{"type", "level"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_duration_seconds",
			Help:      "Durations reported by observability events, by event type.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"type"}),
	}

	if err := reg.Register(o.events); err != nil {
		return nil, fmt.Errorf("failed to register event counter: %w", err)
	}
	if err := reg.Register(o.durations); err != nil {
		reg.Unregister(o.events)
		return nil, fmt.Errorf("failed to register duration histogram: %w", err)
	}

	return o, nil
}

func (o *PrometheusObserver) OnEvent(ctx context.Context, event Event) {
	o.events.WithLabelValues(string(event.Type), event.Level.String()).Inc()

	if d, ok := event.Data[DurationKey].(time.Duration); ok {
		o.durations.WithLabelValues(string(event.Type)).Observe(d.Seconds())
	}
}

// Events exposes the event counter, mainly for reporting and tests.
func (o *PrometheusObserver) Events() *prometheus.CounterVec {
	return o.events
}
