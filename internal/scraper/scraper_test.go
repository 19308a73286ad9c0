package scraper

import (
	"context"
	"errors"
	"testing"

	"redscraper/internal/browser/browsertest"
	"redscraper/internal/types"
)

func TestNewRejectsInvalidFeedURL(t *testing.T) {
	opener := browsertest.NewFakeOpener()
	fetcher := fetcherFunc(func(_ context.Context, stub types.PostStub) (*types.PostDetail, error) {
		return &types.PostDetail{Stub: stub}, nil
	})

	_, err := New(opener, "https://example.com/r/golang/", 4, fetcher, nil, discardLogger())
	if !errors.Is(err, types.ErrInvalidFeedURL) {
		t.Fatalf("expected ErrInvalidFeedURL, got %v", err)
	}
}

func TestRunFatalWhenFeedSurfaceCannotOpen(t *testing.T) {
	opener := browsertest.NewFakeOpener()
	opener.Err = errors.New("no browser")

	s, err := New(opener, "https://www.reddit.com/r/golang/hot", 4,
		fetcherFunc(func(_ context.Context, stub types.PostStub) (*types.PostDetail, error) {
			return &types.PostDetail{Stub: stub}, nil
		}), nil, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = s.Run(context.Background(), 10)
	var se *types.SurfaceError
	if !errors.As(err, &se) {
		t.Fatalf("expected *types.SurfaceError, got %v", err)
	}
}

// Twenty-five posts rendered across four scroll positions, a quota of ten,
// and four workers must produce exactly ten unique results in discovery
// order with no comments and no media.
func TestRunEndToEnd(t *testing.T) {
	const feedURL = "https://www.reddit.com/r/golang/"

	feed := feedSurface(7, 14, 20, 25)
	opener := browsertest.NewFakeOpener()
	opener.Surfaces[feedURL] = feed

	fetcher := newTestFetcher(t, opener, DetailOptions{})
	s, err := New(opener, feedURL, 4, fetcher, nil, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := s.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(results) != 10 {
		t.Fatalf("expected exactly 10 results, got %d", len(results))
	}
	seen := make(map[string]struct{})
	for i, r := range results {
		if r.Failed() {
			t.Errorf("result %d failed: %v", i, r.Err)
			continue
		}
		if r.Stub.ID == "" {
			t.Errorf("result %d has an empty identifier", i)
		}
		if _, dup := seen[r.Stub.ID]; dup {
			t.Errorf("identifier %s appears twice", r.Stub.ID)
		}
		seen[r.Stub.ID] = struct{}{}

		if r.Detail == nil {
			t.Errorf("result %d has no detail", i)
			continue
		}
		if r.Detail.Comments != nil || r.Detail.MediaPaths != nil {
			t.Errorf("result %d carries comments or media although neither was requested", i)
		}
	}

	// Results arrive in discovery order: the feed renders posts by index.
	for i := 1; i < len(results); i++ {
		if results[i-1].Stub.ID >= results[i].Stub.ID {
			t.Errorf("results out of discovery order at %d: %s >= %s",
				i, results[i-1].Stub.ID, results[i].Stub.ID)
		}
	}

	// One feed surface plus one per fetched post, all released.
	if got := s.Stats().Fetched.Load(); got != 10 {
		t.Errorf("stats fetched = %d, want 10", got)
	}
	if opener.OpenCount() != 11 {
		t.Errorf("expected 11 opened surfaces (1 feed + 10 posts), got %d", opener.OpenCount())
	}
	if feed.Closes != 1 {
		t.Errorf("feed surface must be closed once, Closes = %d", feed.Closes)
	}
	if s.Incomplete() {
		t.Error("quota was met, run must not be incomplete")
	}
}

func TestRunCollectsEverythingWithoutQuota(t *testing.T) {
	const feedURL = "https://www.reddit.com/r/golang/new"

	opener := browsertest.NewFakeOpener()
	opener.Surfaces[feedURL] = feedSurface(4, 9)

	fetcher := newTestFetcher(t, opener, DetailOptions{})
	s, err := New(opener, feedURL, 2, fetcher, nil, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := s.Run(context.Background(), NoLimit)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 9 {
		t.Fatalf("expected all 9 posts, got %d", len(results))
	}
	if s.Incomplete() {
		t.Error("an unlimited run is never incomplete")
	}
}
