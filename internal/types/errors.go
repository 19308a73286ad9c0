package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidFeedURL = errors.New("invalid feed URL")
	ErrSurfaceClosed  = errors.New("page surface is closed")
)

// ScrapeError wraps a per-post failure. The run continues; the error fills
// that post's output slot.
type ScrapeError struct {
	PostID    string
	Permalink string
	Err       error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape error for post %s (%s): %v", e.PostID, e.Permalink, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// MediaError wraps a per-asset download failure. Sibling assets are
// unaffected.
type MediaError struct {
	URL    string
	PostID string
	Err    error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media error for post %s (%s): %v", e.PostID, e.URL, e.Err)
}

func (e *MediaError) Unwrap() error { return e.Err }

// SurfaceError wraps a page-surface interaction failure.
type SurfaceError struct {
	Op  string
	URL string
	Err error
}

func (e *SurfaceError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("surface %s failed for %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("surface %s failed: %v", e.Op, e.Err)
}

func (e *SurfaceError) Unwrap() error { return e.Err }
