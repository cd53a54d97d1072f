// Package parallel runs independent loop bodies on a bounded number of goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// ForEach calls body(i) for every i in [0, length) using at most limit
// goroutines and returns when all calls have finished.
// A limit <= 0 uses runtime.NumCPU().
func ForEach(length, limit int, body func(i int)) {
	if length <= 0 {
		return
	}
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	if limit > length {
		limit = length
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	wg.Add(length)
	for i := 0; i < length; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			body(i)
		}(i)
	}
	wg.Wait()
}
