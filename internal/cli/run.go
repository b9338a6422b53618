package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/shivanshkc/p99probe/pkg/export"
	"github.com/shivanshkc/p99probe/pkg/hostinfo"
	"github.com/shivanshkc/p99probe/pkg/probe"
	"github.com/shivanshkc/p99probe/pkg/report"
	"github.com/shivanshkc/p99probe/pkg/workload"
)

// errInvalidFlags is returned after a validation message has been printed.
var errInvalidFlags = errors.New("invalid flags")

// runOptions holds the flag values of the run command.
type runOptions struct {
	iterations int
	warmup     int
	buffer     int
	hdr        bool
	host       bool
	workload   workload.Config
}

var runOpts = runOptions{workload: workload.DefaultConfig()}

// runCmd measures one workload and reports its tail latencies.
var runCmd = &cobra.Command{
	Use:   "run <workload>",
	Short: "Measure the tail latency of a workload.",
	Long: `Measure the tail latency of a workload.
The workload's arguments are bound before measurement. A buffer of --buffer
slots is allocated up front; if --iterations exceeds it, the run is silently
truncated to the buffer size.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: workload.Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if message := validateRunFlags(args[0], runOpts); message != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), text.FgRed.Sprint(message))
			return errInvalidFlags
		}
		return executeRun(cmd.Context(), cmd.OutOrStdout(), args[0], runOpts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.IntVarP(&runOpts.iterations, "iterations", "n", 50_000, "Number of measured calls.")
	flags.IntVarP(&runOpts.warmup, "warmup", "w", 1_000, "Number of unmeasured calls before measurement.")
	flags.IntVarP(&runOpts.buffer, "buffer", "b", 100_000, "Size of the sample buffer.")
	flags.BoolVar(&runOpts.hdr, "hdr", false, "Append an HDR histogram cross-check of the samples.")
	flags.BoolVar(&runOpts.host, "host", false, "Append a description of the host.")

	flags.IntVar(&runOpts.workload.X, "x", runOpts.workload.X, "First operand of the add workload.")
	flags.IntVar(&runOpts.workload.Y, "y", runOpts.workload.Y, "Second operand of the add workload.")
	flags.IntVar(&runOpts.workload.PayloadSize, "payload-size", runOpts.workload.PayloadSize,
		"Input size for the sha256, json and sort workloads.")
	flags.DurationVar(&runOpts.workload.Sleep, "sleep", runOpts.workload.Sleep, "Pause of the sleep workload.")
	flags.StringVarP(&runOpts.workload.URL, "url", "u", "", "Target URL of the http workload.")
	flags.DurationVar(&runOpts.workload.Timeout, "timeout", runOpts.workload.Timeout,
		"Per-request timeout of the http workload.")
}

// executeRun binds the workload, runs the probe and writes every requested
// report section to out.
func executeRun(ctx context.Context, out io.Writer, name string, opts runOptions) error {
	format, err := report.ParseFormat(rootOutput)
	if err != nil {
		return err
	}

	exporter, err := export.ParseExporter(rootOTel)
	if err != nil {
		return err
	}

	instance, err := workload.New(name, opts.workload)
	if err != nil {
		return err
	}
	defer instance.Close()

	if opts.iterations > opts.buffer {
		slog.Warn("iterations_truncated", "requested", opts.iterations, "buffer", opts.buffer)
	}

	// The probe borrows this buffer for the whole run.
	buf := make([]int64, opts.buffer)

	// Last chance to bail out: the probe itself cannot be interrupted.
	if err := ctx.Err(); err != nil {
		return err
	}

	// Collect setup garbage before measuring.
	runtime.GC()

	slog.Debug("probe_starting", "workload", name, "iterations", opts.iterations, "warmup", opts.warmup)
	start := time.Now()
	stats := probe.Measure(instance.Op, buf, opts.iterations, opts.warmup)
	slog.Debug("probe_finished", "workload", name, "samples", stats.Samples, "elapsed", time.Since(start))

	if err := instance.Err(); err != nil {
		return fmt.Errorf("workload %q failed %d of %d calls, first error: %w",
			name, instance.Failures(), max(opts.warmup, 0)+int(stats.Samples), err)
	}

	result := report.Report{
		Workload:   name,
		Iterations: opts.iterations,
		Warmup:     opts.warmup,
		Stats:      stats,
		Sorted:     buf[:stats.Samples],
	}
	if err := report.Write(out, format, result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if opts.hdr {
		if err := report.WriteDistribution(out, result.Sorted); err != nil {
			return fmt.Errorf("failed to write HDR distribution: %w", err)
		}
	}

	if opts.host {
		info, err := hostinfo.Collect(ctx)
		if err != nil {
			slog.Warn("host_info_partial", "error", err)
		}
		hostinfo.Write(out, info)
	}

	if exporter != export.ExporterNone {
		if err := publish(ctx, out, exporter, name, stats); err != nil {
			return err
		}
	}

	return nil
}

// publish sends stats through a one-shot OpenTelemetry publisher.
func publish(ctx context.Context, out io.Writer, exporter export.ExporterType, name string, stats probe.LatencyStats) error {
	publisher, err := export.New(ctx, export.Config{
		Exporter:    exporter,
		Endpoint:    rootOTelEndpoint,
		Insecure:    rootOTelInsecure,
		ServiceName: "p99probe",
		Writer:      out,
	})
	if err != nil {
		return fmt.Errorf("failed to create metrics publisher: %w", err)
	}

	publisher.Record(ctx, name, stats)

	// Shutdown flushes, so give it a bounded window of its own.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := publisher.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to flush metrics: %w", err)
	}

	slog.Debug("metrics_published", "exporter", exporter, "workload", name)
	return nil
}
