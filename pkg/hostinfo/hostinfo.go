// Package hostinfo collects a snapshot of the machine a probe runs on, so that
// tail latencies can be read alongside the conditions they were measured under.
package hostinfo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Info is a best-effort description of the host.
type Info struct {
	OS, Arch      string
	GoVersion     string
	GOMAXPROCS    int
	CPUModel      string
	LogicalCores  int
	PhysicalCores int
	MemoryTotal   uint64
	MemoryUsedPct float64
	Load1         float64
	Load5         float64
	Load15        float64
}

// Collect gathers host information. Fields that cannot be read are left at
// their zero value, and the reasons are returned as a joined error alongside
// the partial Info.
func Collect(ctx context.Context) (Info, error) {
	info := Info{
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		GoVersion:  runtime.Version(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}

	var errs []error

	if cpus, err := cpu.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to read CPU info: %w", err))
	} else if len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	}

	if n, err := cpu.CountsWithContext(ctx, true); err != nil {
		errs = append(errs, fmt.Errorf("failed to count logical cores: %w", err))
	} else {
		info.LogicalCores = n
	}

	if n, err := cpu.CountsWithContext(ctx, false); err != nil {
		errs = append(errs, fmt.Errorf("failed to count physical cores: %w", err))
	} else {
		info.PhysicalCores = n
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to read memory info: %w", err))
	} else if vm != nil {
		info.MemoryTotal = vm.Total
		info.MemoryUsedPct = vm.UsedPercent
	}

	if avg, err := load.AvgWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to read load average: %w", err))
	} else if avg != nil {
		info.Load1, info.Load5, info.Load15 = avg.Load1, avg.Load5, avg.Load15
	}

	return info, errors.Join(errs...)
}

// Write renders info as a table.
func Write(w io.Writer, info Info) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Host")

	t.AppendRow(table.Row{"Platform", info.OS + "/" + info.Arch})
	t.AppendRow(table.Row{"Go", info.GoVersion})
	t.AppendRow(table.Row{"GOMAXPROCS", strconv.Itoa(info.GOMAXPROCS)})
	t.AppendRow(table.Row{"CPU", orUnknown(info.CPUModel)})
	t.AppendRow(table.Row{"Cores", fmt.Sprintf("%d logical / %d physical", info.LogicalCores, info.PhysicalCores)})
	t.AppendRow(table.Row{"Memory", fmt.Sprintf("%.1f GiB (%.1f%% used)", float64(info.MemoryTotal)/(1<<30), info.MemoryUsedPct)})
	t.AppendRow(table.Row{"Load", fmt.Sprintf("%.2f %.2f %.2f", info.Load1, info.Load5, info.Load15)})

	t.Render()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
