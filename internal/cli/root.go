// Package cli contains all the command-line interface logic for the application,
// powered by the cobra library. It defines the root command, subcommands,
// and their respective flags.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Values of the root command's persistent flags, shared by all subcommands.
	rootOutput       string
	rootVerbose      bool
	rootOTel         string
	rootOTelEndpoint string
	rootOTelInsecure bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "p99probe",
	Short: "Measure the tail latency of a repeatedly invoked operation.",
	Long: `Measure the tail latency of a repeatedly invoked operation.
The probe runs warmup calls, then times every measured call and reports the
99th and 99.9th percentile latencies in nanoseconds.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), rootVerbose))
	},
}

// Execute is the primary entry point for the CLI application, called by main.go.
//
// It sets up a root cancellable context wired to SIGINT and SIGTERM. The probe
// itself cannot be interrupted mid-run, so commands check the context between
// phases.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		<-signals
		cancel()
	}()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOutput, "output", "o",
		"lines", "Output format: lines or table.")

	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v",
		false, "Enable debug logging on stderr.")

	rootCmd.PersistentFlags().StringVar(&rootOTel, "otel",
		"none", "Publish results as OpenTelemetry metrics: none, stdout, otlp-http or otlp-grpc.")

	rootCmd.PersistentFlags().StringVar(&rootOTelEndpoint, "otel-endpoint",
		"", "OTLP collector endpoint, e.g. localhost:4318.")

	rootCmd.PersistentFlags().BoolVar(&rootOTelInsecure, "otel-insecure",
		false, "Disable TLS for the OTLP exporter.")
}
