// Package parallel splits element-wise passes over large batches across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultThreshold is the row count below which ParallelizeWithThreshold
// stays on the calling goroutine.
const DefaultThreshold = 4096

// Parallelize divides items into one contiguous range per available
// processor and calls fn(start, end) for each range concurrently. It returns
// once every range is done.
//
// A panic in fn is recovered on its worker and raised again on the calling
// goroutine after all ranges finish, so callers can recover it as usual.
// When several ranges panic, the first one recovered wins.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > items {
		numWorkers = items
	}

	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	var (
		wg       sync.WaitGroup
		once     sync.Once
		panicked any
	)
	for start := 0; start < items; start += chunkSize {
		end := min(start+chunkSize, items)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					once.Do(func() { panicked = r })
				}
			}()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()

	if panicked != nil {
		panic(panicked)
	}
}

// ParallelizeWithThreshold runs fn(0, items) inline when items <= threshold,
// and Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}
