package scraper

import (
	"sync/atomic"
	"time"
)

// Stats tracks run counters. All fields are safe for concurrent update by
// dispatch workers; Snapshot gives a consistent-enough view for reporting.
type Stats struct {
	Discovered atomic.Int64
	Fetched    atomic.Int64
	Failed     atomic.Int64
	Comments   atomic.Int64
	MediaSaved atomic.Int64
	Batches    atomic.Int64

	start time.Time
}

// NewStats creates a Stats with the run clock started.
func NewStats() *Stats {
	return &Stats{start: time.Now()}
}

// Snapshot returns the counters as a flat map for logging and the CLI
// summary.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"discovered":  s.Discovered.Load(),
		"fetched":     s.Fetched.Load(),
		"failed":      s.Failed.Load(),
		"comments":    s.Comments.Load(),
		"media_saved": s.MediaSaved.Load(),
		"batches":     s.Batches.Load(),
		"elapsed":     time.Since(s.start).Round(time.Millisecond).String(),
	}
}
