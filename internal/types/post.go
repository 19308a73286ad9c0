package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// PostStub is the flat attribute record extracted from a single feed node.
// Immutable once created.
type PostStub struct {
	// ID uniquely identifies the post across the whole run.
	ID string `json:"id"`

	// Permalink is the post's own page, relative to the site root.
	Permalink string `json:"permalink"`

	// ContentHref may point at a single media file, a gallery, or neither.
	ContentHref string `json:"content_href,omitempty"`

	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Score        int       `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
	PostType     string    `json:"post_type"`
	CommentCount int       `json:"comment_count"`
	NotBrandSafe bool      `json:"not_brand_safe,omitempty"`
	FeedIndex    int       `json:"feed_index"`
}

// PostDetail is a PostStub plus everything fetched from the post's own page.
// Produced by the detail fetcher; ownership transfers to the dispatcher's
// caller.
type PostDetail struct {
	Stub PostStub `json:"stub"`

	// Body is the formatted post text. Empty means the post has no body,
	// which is not an error.
	Body string `json:"body,omitempty"`

	// MediaPaths lists files saved by the media resolver. Nil means the post
	// had no downloadable media or media saving was not requested.
	MediaPaths []string `json:"media_paths,omitempty"`

	// Comments is the expanded reply tree, nil unless comment scraping was
	// requested.
	Comments *CommentTree `json:"comments,omitempty"`

	ScrapedAt time.Time `json:"scraped_at"`
}

// Result is one dispatcher output slot: either a detail or a failure, never
// both. Output order matches discovery order.
type Result struct {
	Stub   PostStub    `json:"stub"`
	Detail *PostDetail `json:"detail,omitempty"`
	Err    error       `json:"-"`
}

// Failed reports whether this slot captured a per-post failure.
func (r Result) Failed() bool { return r.Err != nil }

// MarshalJSON includes the failure message for failed slots.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias struct {
		Stub   PostStub    `json:"stub"`
		Detail *PostDetail `json:"detail,omitempty"`
		Error  string      `json:"error,omitempty"`
	}
	a := alias{Stub: r.Stub, Detail: r.Detail}
	if r.Err != nil {
		a.Error = r.Err.Error()
	}
	return json.Marshal(a)
}

// ParseIntAttr converts a numeric element attribute, returning 0 for missing
// or malformed values. Feed markup is not trusted.
func ParseIntAttr(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ParseTimeAttr converts a created-timestamp attribute. Zero time on failure.
func ParseTimeAttr(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseBoolAttr treats presence-style attributes ("", "true", "1") as true.
func ParseBoolAttr(s string, present bool) bool {
	if !present {
		return false
	}
	return s == "" || s == "true" || s == "1"
}
