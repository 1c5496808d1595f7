// Package config provides configuration structures for flow execution.
//
// Configuration types establish sensible defaults while allowing layered
// customization: loaded configs merge over defaults, and configs only exist
// during initialization. They are transformed into domain objects (a
// flow.Flow, a flow.Node's retry policy) and do not persist into runtime
// components.
//
// # Flow Configuration
//
//	cfg := config.DefaultFlowConfig("ingest")
//	// Observer:       "slog"
//	// MaxConcurrency: 0 (unbounded fan-out)
//	// MaxCycles:      0 (unbounded loops)
//	// Ordering:       "completion"
//
// # Retry Configuration
//
//	retry := config.DefaultRetryConfig()
//	// MaxAttempts: 1 (no retry)
//	// Wait:        0
//	// Timeout:     0 (attempts are not bounded)
//
// Durations are encoded as Go duration strings in JSON ("250ms", "2s");
// plain numbers are read as nanoseconds.
//
// # Configuration Merging
//
// All configuration types support a Merge pattern. Merge semantics by
// field type:
//
//   - Strings: Merge if source is non-empty
//   - Integers: Merge if source is greater than zero
//   - Durations: Merge if source is greater than zero
//
// Example:
//
//	cfg := config.DefaultFlowConfig("workflow")
//	var loaded config.FlowConfig
//	json.Unmarshal(data, &loaded)
//	cfg.Merge(&loaded)
package config
