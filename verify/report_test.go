package verify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimingClampsDuration(t *testing.T) {
	tm := newTiming(10, 0)
	assert.Equal(t, time.Nanosecond, tm.Duration)
	assert.InEpsilon(t, 1e10, tm.RowsPerSecond, 1e-12)
}

func TestThroughputUsesLargestSample(t *testing.T) {
	results := []SampleResult{
		{Name: "train", Rows: 100, Original: newTiming(100, time.Second), Converted: newTiming(100, time.Second)},
		{Name: "random", Rows: 1000, Original: newTiming(1000, 2*time.Second), Converted: newTiming(1000, 500*time.Millisecond)},
		{Name: "also-1000", Rows: 1000, Original: newTiming(1000, time.Second), Converted: newTiming(1000, time.Second)},
	}

	tp := throughput(results)
	require.NotNil(t, tp)
	assert.Equal(t, "random", tp.Sample)
	assert.Equal(t, 4.0, tp.Speedup)
	assert.Equal(t, 500.0, tp.Original.RowsPerSecond)

	assert.Nil(t, throughput(nil))
}

func TestReportString(t *testing.T) {
	r := &Report{Throughput: &Throughput{
		Sample:    "random",
		Rows:      1000,
		Original:  newTiming(1000, 2*time.Second),
		Converted: newTiming(1000, 500*time.Millisecond),
		Speedup:   4,
	}}

	want := "original.transform: 2.000s  | 500 vec/s\n" +
		"affine.apply      : 0.500s  | 2000 vec/s\n" +
		"Speedup: 4.0x"
	assert.Equal(t, want, r.String())
}

func TestSaveChart(t *testing.T) {
	r := &Report{
		Model: "PCA(n_components=4, n_features=16)",
		Throughput: &Throughput{
			Sample:    "random",
			Rows:      1000,
			Original:  newTiming(1000, 2*time.Second),
			Converted: newTiming(1000, 500*time.Millisecond),
			Speedup:   4,
		},
	}

	dir := t.TempDir()
	for _, name := range []string{"throughput.png", "throughput.svg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, r.SaveChart(path))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	assert.Error(t, r.SaveChart(filepath.Join(dir, "throughput.unknown")))
	assert.Error(t, (&Report{}).SaveChart(filepath.Join(dir, "empty.png")))
}
