package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"redscraper/internal/browser"
	"redscraper/internal/browser/browsertest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postNode(id string) *browsertest.FakeNode {
	return browsertest.NewFakeNode(map[string]string{
		"id":         id,
		"permalink":  "/r/golang/comments/" + id + "/title/",
		"post-title": "title " + id,
		"author":     "author_" + id,
		"score":      "42",
	})
}

// feedSurface scripts a feed that renders the given cumulative node counts,
// one snapshot per scroll position.
func feedSurface(counts ...int) *browsertest.FakeSurface {
	s := browsertest.NewFakeSurface()
	s.ScrollTag = PostTag
	for _, n := range counts {
		var snapshot []browser.Node
		for i := 0; i < n; i++ {
			snapshot = append(snapshot, postNode(fmt.Sprintf("t3_%04d", i)))
		}
		s.Snapshots = append(s.Snapshots, snapshot)
	}
	return s
}

func drain(t *testing.T, d *Discovery) [][]string {
	t.Helper()
	var batches [][]string
	for {
		batch, more, err := d.NextBatch(context.Background())
		if err != nil {
			t.Fatalf("NextBatch: %v", err)
		}
		if len(batch) > 0 {
			var ids []string
			for _, stub := range batch {
				ids = append(ids, stub.ID)
			}
			batches = append(batches, ids)
		}
		if !more {
			return batches
		}
	}
}

func TestDiscoveryYieldsEachPostOnce(t *testing.T) {
	surface := feedSurface(5, 10, 15)
	d := NewDiscovery(surface, NoLimit, discardLogger())

	batches := drain(t, d)

	seen := make(map[string]int)
	total := 0
	for _, batch := range batches {
		for _, id := range batch {
			seen[id]++
			total++
		}
	}
	if total != 15 {
		t.Fatalf("expected 15 stubs across batches, got %d", total)
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("identifier %s appeared in %d batches", id, n)
		}
	}
	if d.Incomplete() {
		t.Error("unlimited run must not be flagged incomplete")
	}
}

func TestDiscoveryQuotaCapsOutput(t *testing.T) {
	surface := feedSurface(5, 10, 15, 20, 25)
	d := NewDiscovery(surface, 12, discardLogger())

	batches := drain(t, d)

	total := 0
	for _, batch := range batches {
		total += len(batch)
	}
	if total != 12 {
		t.Fatalf("expected exactly 12 stubs, got %d", total)
	}
	if got := d.Dispatched(); got != 12 {
		t.Errorf("Dispatched() = %d, want 12", got)
	}
	if d.Incomplete() {
		t.Error("quota-reached run must not be flagged incomplete")
	}
}

func TestDiscoveryFirstBatchBeforeAnyScroll(t *testing.T) {
	surface := feedSurface(5, 10)
	d := NewDiscovery(surface, NoLimit, discardLogger())

	batch, more, err := d.NextBatch(context.Background())
	if err != nil {
		t.Fatalf("NextBatch: %v", err)
	}
	if !more {
		t.Fatal("expected more batches")
	}
	if len(batch) != 5 {
		t.Fatalf("expected 5 stubs in first batch, got %d", len(batch))
	}
	if surface.Scrolls != 0 {
		t.Errorf("the surface must not scroll until the first batch is consumed, saw %d scrolls", surface.Scrolls)
	}
}

func TestDiscoveryZeroQuota(t *testing.T) {
	surface := feedSurface(5)
	d := NewDiscovery(surface, 0, discardLogger())

	batch, more, err := d.NextBatch(context.Background())
	if err != nil {
		t.Fatalf("NextBatch: %v", err)
	}
	if batch != nil || more {
		t.Errorf("zero quota must terminate immediately, got batch=%v more=%v", batch, more)
	}
	if surface.Scrolls != 0 {
		t.Errorf("zero quota must not touch the surface, saw %d scrolls", surface.Scrolls)
	}
}

func TestDiscoveryIncompleteWhenFeedRunsDry(t *testing.T) {
	surface := feedSurface(3, 6)
	d := NewDiscovery(surface, 50, discardLogger())

	batches := drain(t, d)

	total := 0
	for _, batch := range batches {
		total += len(batch)
	}
	if total != 6 {
		t.Fatalf("expected all 6 renderable stubs, got %d", total)
	}
	if !d.Incomplete() {
		t.Error("expected incomplete flag when feed stops growing before quota")
	}
}

func TestDiscoveryRerenderedNodesAreSkipped(t *testing.T) {
	// The second snapshot re-renders the same two posts and appends one new
	// one; index slicing plus the seen set must emit the new post only.
	first := []browser.Node{postNode("t3_aaa"), postNode("t3_bbb")}
	second := []browser.Node{postNode("t3_aaa"), postNode("t3_bbb"), postNode("t3_aaa"), postNode("t3_ccc")}

	surface := browsertest.NewFakeSurface()
	surface.ScrollTag = PostTag
	surface.Snapshots = [][]browser.Node{first, second}

	d := NewDiscovery(surface, NoLimit, discardLogger())
	batches := drain(t, d)

	if len(batches) != 2 {
		t.Fatalf("expected 2 non-empty batches, got %d", len(batches))
	}
	if got := batches[1]; len(got) != 1 || got[0] != "t3_ccc" {
		t.Errorf("second batch should contain only the new post, got %v", got)
	}
	if d.Dispatched() != 3 {
		t.Errorf("re-presented nodes must not count as dispatched, got %d", d.Dispatched())
	}
}

func TestDiscoveryNodesWithoutIDAreSkipped(t *testing.T) {
	surface := browsertest.NewFakeSurface()
	surface.ScrollTag = PostTag
	surface.Snapshots = [][]browser.Node{{
		postNode("t3_one"),
		browsertest.NewFakeNode(map[string]string{"author": "ghost"}),
		postNode("t3_two"),
	}}

	d := NewDiscovery(surface, NoLimit, discardLogger())
	batches := drain(t, d)

	if len(batches) != 1 || len(batches[0]) != 2 {
		t.Fatalf("expected one batch of 2 stubs, got %v", batches)
	}
}
