// Package probe measures the tail latency of a repeatedly invoked operation.
//
// A probe run executes an operation a number of unmeasured warmup times, then
// times each measured invocation into a caller-owned buffer, sorts that buffer
// and reads the 99th and 99.9th percentiles from it.
//
// The probe never fails. Degenerate inputs such as zero iterations, a buffer
// smaller than the requested iteration count or a single sample are handled by
// clamping. Panics raised by the operation propagate to the caller untouched.
package probe

import (
	"slices"
	"time"
)

// Percentiles reported by the probe.
const (
	P99  = 0.99
	P999 = 0.999
)

// Operation is a unit of work with all of its arguments already bound.
type Operation func()

// Clock returns the current time. Elapsed durations are computed with
// time.Time.Sub, so a clock returning values with a monotonic reading
// (like time.Now) never produces negative samples.
type Clock func() time.Time

// LatencyStats holds the result of a single probe run.
type LatencyStats struct {
	P99NS   int64
	P999NS  int64
	Samples uint64
}

// Measure runs op warmup times without timing it, then iterations times with
// timing, and returns the tail percentiles of the measured durations.
//
// The buffer is borrowed for the duration of the call. Its first n slots are
// overwritten with nanosecond durations and sorted ascending, where n is
// iterations truncated to len(buf). The buffer is never resized.
func Measure(op Operation, buf []int64, iterations, warmup int) LatencyStats {
	return MeasureWithClock(time.Now, op, buf, iterations, warmup)
}

// MeasureWithClock is Measure with an explicit clock.
func MeasureWithClock(clock Clock, op Operation, buf []int64, iterations, warmup int) LatencyStats {
	n := clampCount(iterations, len(buf))

	for i := 0; i < max(warmup, 0); i++ {
		op()
	}

	for i := 0; i < n; i++ {
		t0 := clock()
		op()
		t1 := clock()

		buf[i] = t1.Sub(t0).Nanoseconds()
	}

	return Reduce(buf, n)
}

// Reduce sorts the first n samples of buf in place and returns their tail
// percentiles. It is the reduction step of Measure without any timing.
// n is clamped to [0, len(buf)].
func Reduce(buf []int64, n int) LatencyStats {
	n = clampCount(n, len(buf))
	if n == 0 {
		return LatencyStats{}
	}

	data := buf[:n]
	slices.Sort(data)

	return LatencyStats{
		P99NS:   data[PercentileIndex(P99, n)],
		P999NS:  data[PercentileIndex(P999, n)],
		Samples: uint64(n),
	}
}

// PercentileIndex returns the nearest-rank index floor(p*(n-1)) of the p-th
// quantile in a sorted sequence of length n, clamped to [0, n-1].
// It returns 0 when n <= 0.
func PercentileIndex(p float64, n int) int {
	if n <= 0 {
		return 0
	}
	return clampIndex(int(p*float64(n-1)), n)
}

// clampIndex clamps idx into [0, size-1].
func clampIndex(idx, size int) int {
	if idx >= size {
		return size - 1
	}
	if idx < 0 {
		return 0
	}
	return idx
}

// clampCount clamps a requested count into [0, capacity].
func clampCount(count, capacity int) int {
	return max(min(count, capacity), 0)
}
