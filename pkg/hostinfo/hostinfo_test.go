package hostinfo_test

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shivanshkc/p99probe/pkg/hostinfo"
)

// TestCollect checks the fields that never depend on the host's /proc or
// sysctl access. Other fields are best-effort and may be empty in sandboxes.
func TestCollect(t *testing.T) {
	info, err := hostinfo.Collect(context.Background())
	if err != nil {
		t.Logf("partial host info: %v", err)
	}

	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Positive(t, info.GOMAXPROCS)
}

// TestWrite verifies the rendered table, including the unknown fallback.
func TestWrite(t *testing.T) {
	var out bytes.Buffer
	hostinfo.Write(&out, hostinfo.Info{
		OS:            "linux",
		Arch:          "amd64",
		GoVersion:     "go1.24.0",
		GOMAXPROCS:    8,
		LogicalCores:  8,
		PhysicalCores: 4,
		MemoryTotal:   16 << 30,
		MemoryUsedPct: 25,
		Load1:         0.5,
	})

	rendered := out.String()
	assert.Contains(t, rendered, "linux/amd64")
	assert.Contains(t, rendered, "unknown")
	assert.Contains(t, rendered, "8 logical / 4 physical")
	assert.Contains(t, rendered, "16.0 GiB (25.0% used)")
	assert.Contains(t, rendered, "0.50 0.00 0.00")
}
