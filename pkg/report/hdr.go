package report

import (
	"fmt"
	"io"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// hdrSignificantFigures is the precision of the HDR cross-check.
const hdrSignificantFigures = 3

// hdrQuantiles are the quantiles, in percent, reported by the HDR cross-check.
var hdrQuantiles = []float64{50, 90, 99, 99.9, 99.99, 100}

// Bracket is a single quantile of an HDR distribution.
type Bracket struct {
	Quantile float64
	ValueNS  int64
}

// Distribution builds an HDR histogram from samples and returns the value at
// each reported quantile. Values are accurate to three significant figures,
// so they can differ slightly from the exact nearest-rank percentiles.
func Distribution(samples []int64) ([]Bracket, error) {
	if len(samples) == 0 {
		return nil, nil
	}

	highest := int64(2)
	for _, v := range samples {
		if v < 0 {
			return nil, fmt.Errorf("negative sample %d cannot be recorded", v)
		}
		highest = max(highest, v)
	}

	histogram := hdrhistogram.New(1, highest, hdrSignificantFigures)
	for _, v := range samples {
		if err := histogram.RecordValue(v); err != nil {
			return nil, fmt.Errorf("failed to record sample %d: %w", v, err)
		}
	}

	brackets := make([]Bracket, len(hdrQuantiles))
	for i, q := range hdrQuantiles {
		brackets[i] = Bracket{Quantile: q, ValueNS: histogram.ValueAtQuantile(q)}
	}
	return brackets, nil
}

// WriteDistribution renders the HDR cross-check of samples to w.
func WriteDistribution(w io.Writer, samples []int64) error {
	brackets, err := Distribution(samples)
	if err != nil {
		return err
	}
	if len(brackets) == 0 {
		_, err := fmt.Fprintln(w, text.FgYellow.Sprint("No samples to build a distribution from."))
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("HDR distribution (%d significant figures)", hdrSignificantFigures))
	t.AppendHeader(table.Row{"Quantile", "Value", "Nanoseconds"})
	for _, b := range brackets {
		t.AppendRow(table.Row{fmt.Sprintf("%g%%", b.Quantile), FormatNanos(b.ValueNS), b.ValueNS})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})

	t.Render()
	return nil
}
