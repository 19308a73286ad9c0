package scraper

import (
	"context"
	"log/slog"

	"redscraper/internal/browser"
	"redscraper/internal/types"
)

// NoLimit disables the post quota: discovery runs until the feed stops
// growing. A limit of 0 yields nothing and terminates immediately.
const NoLimit = -1

// Discovery drives a feed surface through repeated scroll iterations,
// deduplicates posts by identifier, and yields each new post exactly once.
// A Discovery is owned by a single goroutine; the surface it drives is never
// shared with workers.
type Discovery struct {
	surface browser.Surface
	limit   int
	logger  *slog.Logger

	seen       map[string]struct{}
	dispatched int
	lastIndex  int
	scrolled   bool
	done       bool
	incomplete bool
}

// NewDiscovery creates a discovery loop over an already-open feed surface.
// The caller retains ownership of the surface.
func NewDiscovery(surface browser.Surface, limit int, logger *slog.Logger) *Discovery {
	return &Discovery{
		surface: surface,
		limit:   limit,
		logger:  logger.With("component", "discovery"),
		seen:    make(map[string]struct{}, 64),
	}
}

// Dispatched returns the number of stubs yielded so far.
func (d *Discovery) Dispatched() int { return d.dispatched }

// Incomplete reports whether the feed stopped growing before the quota was
// met. Only meaningful once NextBatch has returned false.
func (d *Discovery) Incomplete() bool { return d.incomplete }

// NextBatch yields the next batch of newly-discovered stubs. The bool result
// reports whether the loop may produce further batches: once it returns
// false the loop is terminal and subsequent calls return nothing.
//
// Scrolling happens at the start of every call after the first, so the
// caller can fully process (and join) one batch before the surface moves.
// A batch may be empty when a scroll grew the page without rendering new
// post nodes yet.
func (d *Discovery) NextBatch(ctx context.Context) ([]types.PostStub, bool, error) {
	if d.done {
		return nil, false, nil
	}
	if d.limit == 0 {
		d.done = true
		return nil, false, nil
	}

	if d.scrolled {
		grew, err := d.surface.ScrollAndWait(ctx)
		if err != nil {
			d.done = true
			return nil, false, &types.SurfaceError{Op: "scroll", Err: err}
		}
		if !grew {
			d.done = true
			if d.limit != NoLimit && d.dispatched < d.limit {
				d.incomplete = true
				d.logger.Warn("feed stopped growing before quota",
					"dispatched", d.dispatched, "limit", d.limit)
			}
			return nil, false, nil
		}
	}
	d.scrolled = true

	nodes, err := d.surface.Nodes(PostTag)
	if err != nil {
		d.done = true
		return nil, false, &types.SurfaceError{Op: "nodes", Err: err}
	}

	var batch []types.PostStub
	for i := d.lastIndex; i < len(nodes); i++ {
		if d.limit != NoLimit && d.dispatched >= d.limit {
			break
		}
		stub, err := ExtractStub(nodes[i], i)
		if err != nil {
			d.logger.Debug("skipping unreadable feed node", "index", i, "error", err)
			continue
		}
		// Index slicing normally prevents re-scans, but a re-rendering
		// surface can move nodes around; identifiers are the source of
		// truth.
		if _, dup := d.seen[stub.ID]; dup {
			continue
		}
		d.seen[stub.ID] = struct{}{}
		d.dispatched++
		batch = append(batch, stub)
	}
	d.lastIndex = len(nodes)

	if d.limit != NoLimit && d.dispatched >= d.limit {
		d.done = true
		d.logger.Info("post quota reached", "dispatched", d.dispatched)
		return batch, false, nil
	}
	return batch, true, nil
}
