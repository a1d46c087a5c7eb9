package verify

import (
	"fmt"
	"strings"
	"time"
)

// minDuration keeps rates and ratios finite on very fast runs.
const minDuration = time.Nanosecond

// Timing is the wall-clock cost of one path over one sample.
type Timing struct {
	Duration      time.Duration
	RowsPerSecond float64
}

func newTiming(rows int, d time.Duration) Timing {
	d = max(d, minDuration)
	return Timing{Duration: d, RowsPerSecond: float64(rows) / d.Seconds()}
}

// SampleResult is the outcome of one sample.
type SampleResult struct {
	Name             string
	Rows             int
	MaxAbsDeviation  float64
	MeanAbsDeviation float64
	Original         Timing
	Converted        Timing
}

// Throughput compares both paths on the largest sample.
type Throughput struct {
	Sample    string
	Rows      int
	Original  Timing
	Converted Timing

	// Speedup is original duration / converted duration.
	Speedup float64
}

// Report is the result of a verification run.
type Report struct {
	Model             string
	DIn, DOut         int
	Tolerance         float64
	RelativeTolerance float64
	Samples           []SampleResult

	// Throughput is nil when verification failed.
	Throughput *Throughput
}

// throughput picks the sample with the most rows; the first one wins ties.
func throughput(results []SampleResult) *Throughput {
	if len(results) == 0 {
		return nil
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Rows > best.Rows {
			best = r
		}
	}
	return &Throughput{
		Sample:    best.Name,
		Rows:      best.Rows,
		Original:  best.Original,
		Converted: best.Converted,
		Speedup:   best.Original.Duration.Seconds() / best.Converted.Duration.Seconds(),
	}
}

// String formats the throughput comparison:
//
//	original.transform: 2.314s  | 432152 vec/s
//	affine.apply      : 0.201s  | 4975124 vec/s
//	Speedup: 11.5x
func (r *Report) String() string {
	if r.Throughput == nil {
		return ""
	}
	tp := r.Throughput
	var sb strings.Builder
	fmt.Fprintf(&sb, "original.transform: %.3fs  | %.0f vec/s\n", tp.Original.Duration.Seconds(), tp.Original.RowsPerSecond)
	fmt.Fprintf(&sb, "affine.apply      : %.3fs  | %.0f vec/s\n", tp.Converted.Duration.Seconds(), tp.Converted.RowsPerSecond)
	fmt.Fprintf(&sb, "Speedup: %.1fx", tp.Speedup)
	return sb.String()
}
