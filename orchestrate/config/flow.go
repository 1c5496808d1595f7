package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Ordering selects how a cycle lays out its collected items and results.
type Ordering string

const (
	// OrderCompletion appends each (item, result) pair when its pipeline
	// finishes. Items and results stay aligned; indices follow completion
	// order, not production order.
	OrderCompletion Ordering = "completion"

	// OrderProduction writes each pair into the slot of its production
	// index, so indices match the order items were produced.
	OrderProduction Ordering = "production"
)

// FlowConfig defines configuration for flow execution.
//
// The Observer field is a string to enable JSON configuration with runtime
// resolution via the observability registry.
//
// Example JSON:
//
//	{
//	  "name": "research-agent",
//	  "observer": "slog",
//	  "max_concurrency": 8,
//	  "max_cycles": 50,
//	  "ordering": "production",
//	  "fail_fast": false
//	}
type FlowConfig struct {
	// Name identifies the flow for observability
	Name string `json:"name"`

	// Observer specifies which observer implementation to use ("noop", "slog", etc.)
	Observer string `json:"observer"`

	// MaxConcurrency caps in-flight pipelines per cycle (0 = unbounded)
	MaxConcurrency int `json:"max_concurrency"`

	// MaxCycles caps the cycles of one traversal (0 = unbounded)
	MaxCycles int `json:"max_cycles"`

	// Ordering selects completion or production ordering of cycle results
	Ordering Ordering `json:"ordering"`

	// FailFast stops pulling items and cancels sibling pipelines on the
	// first pipeline failure of a cycle. When false, every produced item
	// is pulled and every launched pipeline runs to completion before the
	// failure is reported.
	FailFast bool `json:"fail_fast"`
}

// DefaultFlowConfig returns defaults for flow execution.
//
// Default values:
//   - Observer: "slog" for structured logging
//   - MaxConcurrency: 0, every produced item gets its own pipeline
//   - MaxCycles: 0, loops run until a node stops routing
//   - Ordering: "completion"
//   - FailFast: false, a failed pipeline does not cut its cycle short
func DefaultFlowConfig(name string) FlowConfig {
	return FlowConfig{
		Name:     name,
		Observer: "slog",
		Ordering: OrderCompletion,
	}
}

func (c *FlowConfig) Merge(source *FlowConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}

	if source.MaxConcurrency > 0 {
		c.MaxConcurrency = source.MaxConcurrency
	}

	if source.MaxCycles > 0 {
		c.MaxCycles = source.MaxCycles
	}

	if source.Ordering != "" {
		c.Ordering = source.Ordering
	}

	if source.FailFast {
		c.FailFast = true
	}
}

// Validate checks for values the engine cannot honor.
func (c *FlowConfig) Validate() error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency cannot be negative: %d", c.MaxConcurrency)
	}

	if c.MaxCycles < 0 {
		return fmt.Errorf("max_cycles cannot be negative: %d", c.MaxCycles)
	}

	switch c.Ordering {
	case "", OrderCompletion, OrderProduction:
	default:
		return fmt.Errorf("unknown ordering: %s", c.Ordering)
	}

	return nil
}

// LoadFlowConfig reads a JSON config file, merges it with defaults, and
// returns the resulting FlowConfig.
func LoadFlowConfig(filename string) (*FlowConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded FlowConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Merge skips non-positive values, so negatives are caught here.
	if err := loaded.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	cfg := DefaultFlowConfig("flow")
	cfg.Merge(&loaded)

	return &cfg, nil
}
