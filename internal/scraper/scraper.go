// Package scraper contains the scraping core: incremental feed discovery
// with deduplication, bounded-concurrency detail dispatch preserving
// discovery order, and the per-post detail fetch that ties media resolution
// and comment expansion together.
package scraper

import (
	"context"
	"log/slog"

	"redscraper/internal/browser"
	"redscraper/internal/config"
	"redscraper/internal/types"
)

// Scraper runs one feed scrape end to end: it owns the discovery surface,
// hands each batch to the dispatcher, and joins every batch before scrolling
// again.
type Scraper struct {
	opener     browser.Opener
	discovery  *Discovery
	dispatcher *Dispatcher
	stats      *Stats
	logger     *slog.Logger
	feedURL    string
}

// New validates the feed URL and wires the run. The feed surface is opened
// lazily by Run so construction stays cheap and side-effect free.
func New(opener browser.Opener, rawFeedURL string, workers int, fetcher Fetcher, stats *Stats, logger *slog.Logger) (*Scraper, error) {
	feedURL, err := config.ValidateFeedURL(rawFeedURL)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = NewStats()
	}
	return &Scraper{
		opener:     opener,
		dispatcher: NewDispatcher(fetcher, workers, stats, logger),
		stats:      stats,
		logger:     logger.With("component", "scraper"),
		feedURL:    feedURL,
	}, nil
}

// Stats returns the run counters.
func (s *Scraper) Stats() *Stats { return s.stats }

// Incomplete reports whether the feed ran dry before the post quota was met.
// Only meaningful after Run returns.
func (s *Scraper) Incomplete() bool {
	return s.discovery != nil && s.discovery.Incomplete()
}

// Run scrapes the feed and returns one result per discovered post, in
// discovery order. Per-post failures occupy their slot; only a surface that
// cannot be opened aborts the run.
func (s *Scraper) Run(ctx context.Context, postLimit int) ([]types.Result, error) {
	surface, err := s.opener.Open(ctx, s.feedURL)
	if err != nil {
		return nil, &types.SurfaceError{Op: "open", URL: s.feedURL, Err: err}
	}
	defer surface.Close()

	s.discovery = NewDiscovery(surface, postLimit, s.logger)
	s.logger.Info("starting scrape", "feed", s.feedURL, "limit", postLimit)

	var results []types.Result
	for {
		batch, more, err := s.discovery.NextBatch(ctx)
		if err != nil {
			// A dead discovery surface ends the run; what was collected
			// stands.
			s.logger.Error("discovery failed", "error", err)
			return results, err
		}
		if len(batch) > 0 {
			s.stats.Discovered.Add(int64(len(batch)))
			s.stats.Batches.Add(1)
			results = append(results, s.dispatcher.Dispatch(ctx, batch)...)
		}
		if !more {
			break
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
	}

	if s.discovery.Incomplete() {
		s.logger.Warn("run incomplete: feed exhausted before quota",
			"collected", len(results))
	}
	s.logger.Info("scrape finished", "results", len(results))
	return results, nil
}
