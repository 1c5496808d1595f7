package config

import "time"

// RetryConfig bounds the processing of a single item.
//
// Configuration fields:
//   - MaxAttempts: Attempt ceiling including the first call (values below 1 mean 1)
//   - Wait: Delay between attempts (negative values mean 0)
//   - Timeout: Deadline for each attempt (0 = attempts are not bounded)
//
// Example JSON:
//
//	{"max_attempts": 3, "wait": "200ms", "timeout": "5s"}
type RetryConfig struct {
	MaxAttempts int      `json:"max_attempts"`
	Wait        Duration `json:"wait"`
	Timeout     Duration `json:"timeout"`
}

// DefaultRetryConfig returns a single-attempt policy with no wait and no
// per-attempt deadline.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 1,
	}
}

func (c *RetryConfig) Merge(source *RetryConfig) {
	if source.MaxAttempts > 0 {
		c.MaxAttempts = source.MaxAttempts
	}

	if source.Wait > 0 {
		c.Wait = source.Wait
	}

	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}
}

// Attempts returns the attempt ceiling clamped to at least 1.
func (c RetryConfig) Attempts() int {
	return max(c.MaxAttempts, 1)
}

// WaitDuration returns the inter-attempt delay clamped to non-negative.
func (c RetryConfig) WaitDuration() time.Duration {
	return max(c.Wait.Std(), 0)
}

// TimeoutDuration returns the per-attempt deadline, or 0 when attempts
// are not bounded.
func (c RetryConfig) TimeoutDuration() time.Duration {
	return max(c.Timeout.Std(), 0)
}
