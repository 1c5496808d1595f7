package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tailored-agentic-units/flow/observability"
	"github.com/tailored-agentic-units/flow/orchestrate/config"
)

// options holds the settings shared by every subcommand. Values resolve
// through viper: flags, then FLOW_ environment variables, then the config
// file, then defaults.
type options struct {
	cfgFile string
	verbose bool
	metrics bool

	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &options{v: viper.New()}

	root := &cobra.Command{
		Use:   "flow",
		Short: "Run dataflow pipelines",
		Long: `flow runs pipelines of nodes that produce items, process them in parallel
with retry, and aggregate the results to decide where to go next.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.flow/config.yaml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log cycle and item events to stderr")
	flags.BoolVar(&opts.metrics, "metrics", false, "print event counters after the run")

	flags.String("name", "", "flow name reported in events")
	flags.String("observer", "", "registered observer: noop or slog")
	flags.Int("max-concurrency", 0, "pipelines in flight per cycle, 0 for unbounded")
	flags.Int("max-cycles", 0, "cycles per traversal, 0 for unbounded")
	flags.String("ordering", "", "result ordering: completion or production")
	flags.Bool("fail-fast", false, "cancel a cycle at its first failed pipeline")
	flags.Int("max-attempts", 0, "process attempts per item")
	flags.Duration("wait", 0, "delay between attempts")
	flags.Duration("timeout", 0, "deadline for each attempt, 0 for none")

	bindings := map[string]string{
		"flow.name":            "name",
		"flow.observer":        "observer",
		"flow.max_concurrency": "max-concurrency",
		"flow.max_cycles":      "max-cycles",
		"flow.ordering":        "ordering",
		"flow.fail_fast":       "fail-fast",
		"retry.max_attempts":   "max-attempts",
		"retry.wait":           "wait",
		"retry.timeout":        "timeout",
	}
	for key, flag := range bindings {
		if err := opts.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}

	opts.v.SetDefault("flow.name", "wordcount")
	opts.v.SetDefault("flow.observer", "slog")
	opts.v.SetDefault("flow.ordering", string(config.OrderCompletion))
	opts.v.SetDefault("retry.max_attempts", 3)
	opts.v.SetDefault("retry.wait", "100ms")

	root.AddCommand(newWordCountCmd(opts))
	root.AddCommand(newConfigCmd(opts))

	return root
}

// initConfig reads in the config file and environment variables.
func (o *options) initConfig() error {
	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			o.v.AddConfigPath(filepath.Join(home, ".flow"))
		}
		o.v.SetConfigName("config")
		o.v.SetConfigType("yaml")
	}

	o.v.SetEnvPrefix("FLOW")
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	o.v.AutomaticEnv()

	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func (o *options) flowConfig() (config.FlowConfig, error) {
	cfg := config.DefaultFlowConfig("wordcount")

	loaded := config.FlowConfig{
		Name:           o.v.GetString("flow.name"),
		Observer:       o.v.GetString("flow.observer"),
		MaxConcurrency: o.v.GetInt("flow.max_concurrency"),
		MaxCycles:      o.v.GetInt("flow.max_cycles"),
		Ordering:       config.Ordering(o.v.GetString("flow.ordering")),
		FailFast:       o.v.GetBool("flow.fail_fast"),
	}
	if err := loaded.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid flow configuration: %w", err)
	}
	cfg.Merge(&loaded)
	return cfg, nil
}

func (o *options) retryConfig() config.RetryConfig {
	cfg := config.DefaultRetryConfig()

	loaded := config.RetryConfig{
		MaxAttempts: o.v.GetInt("retry.max_attempts"),
		Wait:        config.Duration(o.v.GetDuration("retry.wait")),
		Timeout:     config.Duration(o.v.GetDuration("retry.timeout")),
	}
	cfg.Merge(&loaded)

	return cfg
}

func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// observer resolves the configured observer, replacing the registry's
// "slog" entry with one that writes to w. With --metrics the result also
// feeds a Prometheus registry, returned for reporting.
func (o *options) observer(name string, w io.Writer) (observability.Observer, *prometheus.Registry, error) {
	observability.RegisterObserver("slog", observability.NewSlogObserver(o.logger(w)))

	obs, err := observability.GetObserver(name)
	if err != nil {
		return nil, nil, err
	}

	if !o.metrics {
		return obs, nil, nil
	}

	registry := prometheus.NewRegistry()
	metrics, err := observability.NewPrometheusObserver(registry, "flow")
	if err != nil {
		return nil, nil, err
	}

	return observability.NewMultiObserver(obs, metrics), registry, nil
}
