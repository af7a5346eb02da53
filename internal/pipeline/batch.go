package pipeline

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// BatchResult is the outcome of one request in a batch.
type BatchResult struct {
	Request Request
	Result  Result
	Err     error
}

// ScrapeAll scrapes many establishments with at most workers in flight.
// Each establishment is still processed sequentially, and a URL listed twice is
// only scraped once. Results keep the order of the first occurrence of each URL.
// The returned error joins every per-request error.
func (p *Pipeline) ScrapeAll(ctx context.Context, reqs []Request, workers int) ([]BatchResult, error) {
	if workers < 1 {
		workers = 1
	}

	seen := make(map[string]bool, len(reqs))
	var unique []Request
	for _, r := range reqs {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		unique = append(unique, r)
	}

	results := make([]BatchResult, len(unique))
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for i, req := range unique {
		results[i].Request = req
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i].Err = err
			continue
		}
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			defer sem.Release(1)
			results[i].Result, results[i].Err = p.Scrape(ctx, req)
		}(i, req)
	}
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}
