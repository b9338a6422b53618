package cli

import (
	"net/url"

	"github.com/shivanshkc/p99probe/pkg/export"
	"github.com/shivanshkc/p99probe/pkg/report"
)

// validateRootFlags validates the flags of the root command.
func validateRootFlags() string {
	if _, err := report.ParseFormat(rootOutput); err != nil {
		return "Output must be one of: lines, table."
	}

	if _, err := export.ParseExporter(rootOTel); err != nil {
		return "OpenTelemetry exporter must be one of: none, stdout, otlp-http, otlp-grpc."
	}

	return ""
}

// validateRunFlags validates the flags of the run command.
func validateRunFlags(name string, opts runOptions) string {
	// Root command flags are used by the run command too.
	if message := validateRootFlags(); message != "" {
		return message
	}

	// Zero is allowed and yields an empty result.
	if opts.iterations < 0 {
		return "Iteration count must not be negative."
	}

	if opts.warmup < 0 {
		return "Warmup count must not be negative."
	}

	if opts.buffer < 0 {
		return "Buffer size must not be negative."
	}

	if opts.workload.PayloadSize <= 0 {
		return "Payload size must be greater than 0."
	}

	if opts.workload.Sleep < 0 {
		return "Sleep duration must not be negative."
	}

	// The URL only matters to the http workload.
	if name == "http" {
		if opts.workload.URL == "" {
			return "A URL is required for the http workload."
		}
		if _, err := url.ParseRequestURI(opts.workload.URL); err != nil {
			return "Invalid URL: " + err.Error()
		}
		if opts.workload.Timeout <= 0 {
			return "Timeout must be greater than 0."
		}
	}

	return ""
}
