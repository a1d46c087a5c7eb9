package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelizeCoversEveryItemOnce(t *testing.T) {
	for _, items := range []int{1, 7, 1000, 100003} {
		hits := make([]int32, items)
		Parallelize(items, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("items=%d: index %d visited %d times", items, i, h)
			}
		}
	}
}

func TestParallelizeWithThreshold(t *testing.T) {
	var calls int32
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, int32(1), calls)

	calls = 0
	ParallelizeWithThreshold(0, 100, func(start, end int) {
		atomic.AddInt32(&calls, 1)
	})
	assert.Equal(t, int32(0), calls, "empty input must not call fn")
}

func TestParallelizeRaisesWorkerPanicOnCaller(t *testing.T) {
	assert.PanicsWithValue(t, "bad range", func() {
		Parallelize(100003, func(start, end int) {
			if start == 0 {
				panic("bad range")
			}
		})
	})
}
