package software

import (
	"runtime"
	"sync"
)

// bandRows is the height of one unit of work.
const bandRows = 16

type band struct {
	y0, y1 int
}

// workerCount resolves a configured worker count; 0 means one per CPU.
func workerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	return max(runtime.NumCPU(), 1)
}

// parallelRows runs fn over [0, height) in row bands on up to workers
// goroutines and returns once every band is done.
func parallelRows(workers, height int, fn func(y0, y1 int)) {
	if workers <= 1 || height <= bandRows {
		fn(0, height)
		return
	}

	bands := make(chan band, (height+bandRows-1)/bandRows)
	for y := 0; y < height; y += bandRows {
		bands <- band{y0: y, y1: min(y+bandRows, height)}
	}
	close(bands)

	var wg sync.WaitGroup
	for range min(workers, cap(bands)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range bands {
				fn(b.y0, b.y1)
			}
		}()
	}
	wg.Wait()
}
