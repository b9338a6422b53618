// Package report renders the result of a probe run for humans.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/shivanshkc/p99probe/pkg/probe"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects how a Report is written.
type Format string

const (
	// FormatLines prints one value per line.
	FormatLines Format = "lines"
	// FormatTable prints a table with the percentiles and order statistics.
	FormatTable Format = "table"
)

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatLines, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Report is everything known about a finished probe run.
type Report struct {
	Workload   string
	Iterations int
	Warmup     int
	Stats      probe.LatencyStats
	// Sorted is the measured prefix of the probe's buffer.
	Sorted []int64
}

// Write renders r to w in the given format.
func Write(w io.Writer, format Format, r Report) error {
	switch format {
	case FormatLines:
		return writeLines(w, r)
	case FormatTable:
		return writeTable(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeLines(w io.Writer, r Report) error {
	_, err := fmt.Fprintf(w, "Samples:   %d\nP99:       %d ns\nP99.9:     %d ns\n",
		r.Stats.Samples, r.Stats.P99NS, r.Stats.P999NS)
	return err
}

func writeTable(w io.Writer, r Report) error {
	summary := Summarize(r.Sorted)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Latency: " + r.Workload)
	t.AppendHeader(table.Row{"Metric", "Value", "Nanoseconds"})

	t.AppendRow(table.Row{"Samples", strconv.FormatUint(r.Stats.Samples, 10), ""})
	t.AppendRow(table.Row{"Requested", strconv.Itoa(r.Iterations), ""})
	t.AppendRow(table.Row{"Warmup", strconv.Itoa(r.Warmup), ""})
	t.AppendSeparator()
	t.AppendRow(durationRow("Min", summary.Min))
	t.AppendRow(durationRow("Median", summary.Median))
	t.AppendRow(durationRow("P99", r.Stats.P99NS))
	t.AppendRow(durationRow("P99.9", r.Stats.P999NS))
	t.AppendRow(durationRow("Max", summary.Max))

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})

	t.Render()
	return nil
}

func durationRow(name string, ns int64) table.Row {
	return table.Row{name, FormatNanos(ns), strconv.FormatInt(ns, 10)}
}
