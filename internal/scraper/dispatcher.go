package scraper

import (
	"context"
	"log/slog"
	"sync"

	"redscraper/internal/types"
)

// Fetcher turns one stub into a detail record. Implementations must release
// every resource they acquire before returning, success or failure.
type Fetcher interface {
	Fetch(ctx context.Context, stub types.PostStub) (*types.PostDetail, error)
}

// Dispatcher fans one discovery batch out to a bounded worker pool and joins
// before returning. Output order always matches input order; a worker
// failure fills its own slot and never disturbs siblings.
type Dispatcher struct {
	fetcher Fetcher
	workers int
	logger  *slog.Logger
	stats   *Stats
}

// NewDispatcher creates a dispatcher running at most workers concurrent
// fetches. A worker count below 1 is treated as 1.
func NewDispatcher(fetcher Fetcher, workers int, stats *Stats, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		fetcher: fetcher,
		workers: workers,
		logger:  logger.With("component", "dispatcher"),
		stats:   stats,
	}
}

// Dispatch fetches every stub and blocks until the whole batch has joined.
// The result slice is index-addressed: result[i] always belongs to stubs[i].
func (d *Dispatcher) Dispatch(ctx context.Context, stubs []types.PostStub) []types.Result {
	if len(stubs) == 0 {
		return nil
	}

	results := make([]types.Result, len(stubs))
	sem := make(chan struct{}, d.workers)
	var wg sync.WaitGroup

	for i, stub := range stubs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, stub types.PostStub) {
			defer wg.Done()
			defer func() { <-sem }()

			detail, err := d.fetcher.Fetch(ctx, stub)
			if err != nil {
				d.stats.Failed.Add(1)
				d.logger.Warn("post fetch failed",
					"post_id", stub.ID, "permalink", stub.Permalink, "error", err)
				results[i] = types.Result{
					Stub: stub,
					Err:  &types.ScrapeError{PostID: stub.ID, Permalink: stub.Permalink, Err: err},
				}
				return
			}
			d.stats.Fetched.Add(1)
			results[i] = types.Result{Stub: stub, Detail: detail}
		}(i, stub)
	}

	wg.Wait()
	return results
}
