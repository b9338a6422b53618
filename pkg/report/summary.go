package report

// Summary holds order statistics read from an already sorted sample prefix.
type Summary struct {
	Min, Median, Max int64
}

// Summarize reads the minimum, median and maximum of sorted. The slice must be
// sorted ascending, which is the state the probe leaves its buffer in.
// An empty slice yields the zero Summary.
func Summarize(sorted []int64) Summary {
	if len(sorted) == 0 {
		return Summary{}
	}

	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		// Average without overflowing on large samples.
		lo, hi := sorted[mid-1], sorted[mid]
		median = lo + (hi-lo)/2
	}

	return Summary{Min: sorted[0], Median: median, Max: sorted[len(sorted)-1]}
}
