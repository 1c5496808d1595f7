package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/flow/orchestrate/config"
	"github.com/tailored-agentic-units/flow/orchestrate/flow"
)

const (
	keyFiles  = "files"
	keyCounts = "counts"
	keyTotal  = "total"
)

// fileCount is the per-file result of the count node.
type fileCount struct {
	Path  string
	Lines int
	Words int
	Bytes int
	Err   string
}

func newWordCountCmd(opts *options) *cobra.Command {
	var skipErrors bool

	cmd := &cobra.Command{
		Use:   "wordcount [files...]",
		Short: "Count lines, words and bytes of files in parallel",
		Long: `Counts every file in its own pipeline, retrying failed reads, then routes
to a report node that prints a table of the results.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWordCount(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr(), args, skipErrors)
		},
	}

	cmd.Flags().BoolVar(&skipErrors, "skip-errors", false, "report unreadable files instead of failing")

	return cmd
}

func runWordCount(ctx context.Context, opts *options, stdout, stderr io.Writer, files []string, skipErrors bool) error {
	cfg, err := opts.flowConfig()
	if err != nil {
		return err
	}

	observer, registry, err := opts.observer(cfg.Observer, stderr)
	if err != nil {
		return fmt.Errorf("failed to create observer: %w", err)
	}

	f, err := flow.NewWithObserver[*flow.Store](cfg, observer)
	if err != nil {
		return err
	}

	count, _ := newWordCountGraph(stdout, opts.retryConfig(), skipErrors)
	store := flow.NewStore(map[string]any{keyFiles: files})

	result, err := f.Run(ctx, count, store)
	if err != nil {
		return fmt.Errorf("wordcount failed: %w", err)
	}

	fmt.Fprintf(stdout, "\nRun %s: %d cycles, %s\n", result.RunID, result.Cycles, result.Reason)

	if registry != nil {
		return renderMetrics(stdout, registry)
	}
	return nil
}

// newWordCountGraph builds the count node, which fans out over the
// files in the store, and the report node it routes to.
func newWordCountGraph(out io.Writer, retry config.RetryConfig, skipErrors bool) (
	*flow.Node[*flow.Store, string, fileCount],
	*flow.Node[*flow.Store, struct{}, struct{}],
) {
	fns := flow.Funcs[*flow.Store, string, fileCount]{
		ProduceFn: func(ctx context.Context, s *flow.Store) (iter.Seq[string], error) {
			files, ok := flow.Lookup[[]string](s, keyFiles)
			if !ok {
				return nil, errors.New("no files to count")
			}
			return flow.Each(files...), nil
		},
		ProcessFn: func(ctx context.Context, s *flow.Store, path string) (fileCount, error) {
			return countFile(ctx, path)
		},
		AggregateFn: func(ctx context.Context, s *flow.Store, paths []string, counts []fileCount) (flow.Action, error) {
			total := fileCount{Path: "total"}
			for _, c := range counts {
				total.Lines += c.Lines
				total.Words += c.Words
				total.Bytes += c.Bytes
			}

			s.Set(keyCounts, counts)
			s.Set(keyTotal, total)
			return flow.Act("report"), nil
		},
	}

	if skipErrors {
		fns.DegradeFn = func(ctx context.Context, s *flow.Store, path string, err error) (fileCount, error) {
			return fileCount{Path: path, Err: err.Error()}, nil
		}
	}

	count := flow.NewFuncNode("count", fns, flow.WithRetry(retry))

	report := flow.NewFuncNode("report", flow.Funcs[*flow.Store, struct{}, struct{}]{
		ProduceFn: func(ctx context.Context, s *flow.Store) (iter.Seq[struct{}], error) {
			return flow.None[struct{}](), nil
		},
		AggregateFn: func(ctx context.Context, s *flow.Store, _ []struct{}, _ []struct{}) (flow.Action, error) {
			counts, _ := flow.Lookup[[]fileCount](s, keyCounts)
			total, _ := flow.Lookup[fileCount](s, keyTotal)
			if err := renderCounts(out, counts, total); err != nil {
				return flow.NoAction, fmt.Errorf("failed to render report: %w", err)
			}
			return flow.Stop, nil
		},
	})

	count.ConnectOn("report", report)

	return count, report
}

// countFile reads path and counts its lines, words and bytes. A missing
// file is a permanent failure.
func countFile(ctx context.Context, path string) (fileCount, error) {
	if err := ctx.Err(); err != nil {
		return fileCount{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileCount{}, flow.Permanent(err)
		}
		return fileCount{}, err
	}

	return fileCount{
		Path:  path,
		Lines: bytes.Count(data, []byte{'\n'}),
		Words: len(bytes.Fields(data)),
		Bytes: len(data),
	}, nil
}

func renderCounts(w io.Writer, counts []fileCount, total fileCount) error {
	table := tablewriter.NewWriter(w)
	table.Header("File", "Lines", "Words", "Bytes", "Status")

	for _, c := range counts {
		status := "ok"
		if c.Err != "" {
			status = c.Err
		}
		if err := table.Append(c.Path, strconv.Itoa(c.Lines), strconv.Itoa(c.Words), strconv.Itoa(c.Bytes), status); err != nil {
			return err
		}
	}

	if err := table.Append(total.Path, strconv.Itoa(total.Lines), strconv.Itoa(total.Words), strconv.Itoa(total.Bytes), ""); err != nil {
		return err
	}

	return table.Render()
}

// renderMetrics prints the event counters gathered by the Prometheus
// observer.
func renderMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	fmt.Fprintln(w)
	table := tablewriter.NewWriter(w)
	table.Header("Event", "Level", "Count")

	for _, family := range families {
		if family.GetName() != "flow_events_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := make(map[string]string, len(metric.GetLabel()))
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			count := strconv.FormatFloat(metric.GetCounter().GetValue(), 'f', -1, 64)
			if err := table.Append(labels["type"], labels["level"], count); err != nil {
				return err
			}
		}
	}

	return table.Render()
}
