package talon

import "sync"

// task fans fn out over data in contiguous chunks, one goroutine per worker.
// A worker count of one (or small inputs) runs inline: spawning goroutines
// for a handful of bodies costs more than it saves.
func task[T any](workersCount int, data []T, fn func(i int, item *T)) {
	if workersCount <= 1 || len(data) < workersCount*4 {
		for i := range data {
			fn(i, &data[i])
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (len(data) + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		start := workerID * chunkSize
		end := min(start+chunkSize, len(data))
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i, &data[i])
			}
		}(start, end)
	}
	wg.Wait()
}
