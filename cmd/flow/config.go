package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/flow/observability"
	"github.com/tailored-agentic-units/flow/orchestrate/config"
)

type effectiveConfig struct {
	Flow      config.FlowConfig  `json:"flow"`
	Retry     config.RetryConfig `json:"retry"`
	Observers []string           `json:"observers"`
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Prints the configuration a run would use after layering flags, FLOW_
environment variables, the config file and defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flowCfg, err := opts.flowConfig()
			if err != nil {
				return err
			}

			output, err := json.MarshalIndent(effectiveConfig{
				Flow:      flowCfg,
				Retry:     opts.retryConfig(),
				Observers: observability.RegisteredObservers(),
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(output))
			return nil
		},
	}
}
