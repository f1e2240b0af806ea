// Package worker provides a bounded, index-ordered parallel map. Page
// rendering and preprocessing are independent per page; results must
// reassemble by page index, so ordering lives in the result slice rather
// than in completion order.
package worker

import (
	"context"
	"sync"
)

// Map runs fn for every index in [0, n) using at most workers concurrent
// goroutines and returns results in index order. The first error cancels
// the remaining work and is returned; partial results are discarded so a
// stage never hands back a mix of old and new data.
func Map[T any](ctx context.Context, n, workers int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	if n == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]T, n)
	errs := make([]error, n)
	semaphore := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			res, err := fn(ctx, idx)
			if err != nil {
				errs[idx] = err
				cancel()
				return
			}
			results[idx] = res
		}(i)
	}
	wg.Wait()

	// Report the lowest-index error so failures are deterministic even
	// when several pages fail at once.
	for _, err := range errs {
		if err != nil && err != context.Canceled {
			return nil, err
		}
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
