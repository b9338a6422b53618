// Package export publishes the result of a probe run as OpenTelemetry metrics.
//
// Publishing happens once, after measurement has finished, so no exporter work
// ever overlaps with the measured loop.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/shivanshkc/p99probe/pkg/probe"
)

// ErrUnknownExporter is returned for unsupported exporter names.
var ErrUnknownExporter = errors.New("unknown exporter")

// ExporterType selects where metrics are sent.
type ExporterType string

const (
	ExporterNone     ExporterType = "none"
	ExporterStdout   ExporterType = "stdout"
	ExporterOTLPHTTP ExporterType = "otlp-http"
	ExporterOTLPGRPC ExporterType = "otlp-grpc"
)

// Metric names published for every run.
const (
	MetricP99     = "p99probe.latency.p99"
	MetricP999    = "p99probe.latency.p999"
	MetricSamples = "p99probe.samples"
)

// ParseExporter converts a flag value into an ExporterType.
func ParseExporter(s string) (ExporterType, error) {
	switch e := ExporterType(s); e {
	case ExporterNone, ExporterStdout, ExporterOTLPHTTP, ExporterOTLPGRPC:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownExporter, s)
	}
}

// Config holds the exporter configuration.
type Config struct {
	Exporter ExporterType
	// Endpoint is the OTLP collector address, e.g. "localhost:4318".
	// Empty means the exporter's default.
	Endpoint string
	// Insecure disables TLS for OTLP exporters.
	Insecure bool

	ServiceName    string
	ServiceVersion string

	// Writer receives stdout exporter output. Defaults to os.Stdout.
	Writer io.Writer
}

// Publisher records probe results into an OpenTelemetry meter.
type Publisher struct {
	provider *sdkmetric.MeterProvider

	p99     metric.Int64Gauge
	p999    metric.Int64Gauge
	samples metric.Int64Counter
}

// New creates a Publisher backed by the configured exporter. With
// ExporterNone, the Publisher records into a provider with no reader and
// nothing leaves the process.
func New(ctx context.Context, cfg Config) (*Publisher, error) {
	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics resource: %w", err)
	}

	if cfg.Exporter == ExporterNone || cfg.Exporter == "" {
		return newPublisher(sdkmetric.NewMeterProvider(sdkmetric.WithResource(res)))
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	return newPublisher(sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	))
}

// NewWithReader creates a Publisher that is collected by the given reader.
func NewWithReader(reader sdkmetric.Reader, cfg Config) (*Publisher, error) {
	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics resource: %w", err)
	}
	return newPublisher(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res)))
}

func newPublisher(provider *sdkmetric.MeterProvider) (*Publisher, error) {
	meter := provider.Meter("github.com/shivanshkc/p99probe")
	p := &Publisher{provider: provider}

	var err error
	p.p99, err = meter.Int64Gauge(MetricP99,
		metric.WithDescription("99th percentile latency of the probed operation"),
		metric.WithUnit("ns"))
	if err != nil {
		return nil, fmt.Errorf("failed to create p99 gauge: %w", err)
	}

	p.p999, err = meter.Int64Gauge(MetricP999,
		metric.WithDescription("99.9th percentile latency of the probed operation"),
		metric.WithUnit("ns"))
	if err != nil {
		return nil, fmt.Errorf("failed to create p99.9 gauge: %w", err)
	}

	p.samples, err = meter.Int64Counter(MetricSamples,
		metric.WithDescription("Number of measured invocations"))
	if err != nil {
		return nil, fmt.Errorf("failed to create samples counter: %w", err)
	}

	return p, nil
}

// Record publishes the stats of one run, attributed to the workload name.
func (p *Publisher) Record(ctx context.Context, workload string, stats probe.LatencyStats) {
	attrs := metric.WithAttributes(attribute.String("workload", workload))

	p.p99.Record(ctx, stats.P99NS, attrs)
	p.p999.Record(ctx, stats.P999NS, attrs)
	p.samples.Add(ctx, int64(stats.Samples), attrs)
}

// Shutdown flushes pending metrics and releases the exporter.
func (p *Publisher) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}

func newExporter(ctx context.Context, cfg Config) (sdkmetric.Exporter, error) {
	switch cfg.Exporter {
	case ExporterStdout:
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		return stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())

	case ExporterOTLPHTTP:
		var opts []otlpmetrichttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)

	case ExporterOTLPGRPC:
		var opts []otlpmetricgrpc.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, cfg.Exporter)
	}
}

func newResource(cfg Config) (*resource.Resource, error) {
	name := cfg.ServiceName
	if name == "" {
		name = "p99probe"
	}

	attrs := []attribute.KeyValue{semconv.ServiceName(name)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}

	return resource.Merge(resource.Default(), resource.NewWithAttributes("", attrs...))
}
