package flow

import "github.com/tailored-agentic-units/flow/observability"

const (
	// Traversal
	EventFlowStart    observability.EventType = "flow.start"
	EventFlowComplete observability.EventType = "flow.complete"
	EventFlowFailed   observability.EventType = "flow.failed"

	// Node cycles
	EventCycleStart    observability.EventType = "cycle.start"
	EventCycleComplete observability.EventType = "cycle.complete"
	EventCycleRevisit  observability.EventType = "cycle.revisit"

	// Item pipelines
	EventItemStart      observability.EventType = "item.start"
	EventItemComplete   observability.EventType = "item.complete"
	EventAttemptFailure observability.EventType = "attempt.failure"
	EventItemDegrade    observability.EventType = "item.degrade"
	EventAttemptPanic   observability.EventType = "attempt.panic"

	// Routing
	EventEdgeTransition observability.EventType = "edge.transition"
	EventEdgeDeadEnd    observability.EventType = "edge.dead_end"
)
