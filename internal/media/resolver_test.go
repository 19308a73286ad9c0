package media

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"redscraper/internal/browser"
	"redscraper/internal/browser/browsertest"
	"redscraper/internal/config"
)

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	cfg := &config.MediaConfig{
		RetryAttempts: 3,
		RetryDelay:    0, // no point sleeping in tests
		FetchTimeout:  5 * time.Second,
		MaxBodySize:   1 << 20,
	}
	return NewResolver(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func imageServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveNonMediaReference(t *testing.T) {
	r := testResolver(t)
	dest := t.TempDir()

	paths, err := r.ResolveAndSave(context.Background(), browsertest.NewFakeSurface(),
		"https://www.reddit.com/r/golang/comments/abc/some_post/", "t3_abc", dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paths != nil {
		t.Errorf("expected nil paths for non-media reference, got %v", paths)
	}

	entries, _ := os.ReadDir(dest)
	if len(entries) != 0 {
		t.Errorf("expected zero filesystem writes, found %d entries", len(entries))
	}
}

func TestResolveAndSaveDirectImage(t *testing.T) {
	srv := imageServer(t, "jpeg-bytes")
	r := testResolver(t)
	dest := t.TempDir()

	// mediaPattern only matches URLs ending in a media extension.
	ref := srv.URL + "/photo.jpg"
	paths, err := r.ResolveAndSave(context.Background(), browsertest.NewFakeSurface(), ref, "t3_abc", dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 saved file, got %d", len(paths))
	}

	want := filepath.Join(dest, "t3_abc", "t3_abc.jpg")
	if paths[0] != want {
		t.Errorf("expected path %s, got %s", want, paths[0])
	}
	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("saved file unreadable: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("saved content mismatch: %q", data)
	}
	if r.Stats().Saved.Load() != 1 {
		t.Errorf("expected 1 saved in stats, got %d", r.Stats().Saved.Load())
	}
}

func TestResolveAndSaveGallery(t *testing.T) {
	srv := imageServer(t, "img")
	r := testResolver(t)
	dest := t.TempDir()

	carousel := browsertest.NewFakeNode(nil)
	var imgs []browser.Node
	for _, name := range []string{"aaa", "bbb", "ccc"} {
		img := browsertest.NewFakeNode(map[string]string{
			"src": srv.URL + "/preview-" + name + ".jpg",
		})
		imgs = append(imgs, img)
	}
	carousel.SetChildren("img.absolute", imgs...)

	surface := browsertest.NewFakeSurface()
	surface.Tags[galleryTag] = []browser.Node{carousel}

	paths, err := r.ResolveAndSave(context.Background(), surface,
		"https://www.reddit.com/gallery/1abc2d", "t3_gal", dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 saved files, got %d", len(paths))
	}

	// Names come from the trailing URL segment.
	for i, name := range []string{"aaa", "bbb", "ccc"} {
		want := filepath.Join(dest, "t3_gal", name+".jpg")
		if paths[i] != want {
			t.Errorf("asset %d: expected %s, got %s", i, want, paths[i])
		}
	}
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png"))
	}))
	t.Cleanup(srv.Close)

	r := testResolver(t)
	dest := t.TempDir()

	paths, err := r.ResolveAndSave(context.Background(), browsertest.NewFakeSurface(),
		srv.URL+"/x.png", "t3_rty", dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 saved file after retries, got %d", len(paths))
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 fetch attempts, got %d", hits.Load())
	}
}

func TestPermanentAssetFailureSkipsSiblings(t *testing.T) {
	good := imageServer(t, "ok")
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(bad.Close)

	carousel := browsertest.NewFakeNode(nil)
	carousel.SetChildren("img.absolute",
		browsertest.NewFakeNode(map[string]string{"src": bad.URL + "/preview-one.jpg"}),
		browsertest.NewFakeNode(map[string]string{"src": good.URL + "/preview-two.jpg"}),
	)
	surface := browsertest.NewFakeSurface()
	surface.Tags[galleryTag] = []browser.Node{carousel}

	r := testResolver(t)
	dest := t.TempDir()

	paths, err := r.ResolveAndSave(context.Background(), surface,
		"https://www.reddit.com/gallery/1fail1", "t3_mix", dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected the surviving sibling to be saved, got %v", paths)
	}
	if r.Stats().Failed.Load() != 1 {
		t.Errorf("expected 1 failed asset in stats, got %d", r.Stats().Failed.Load())
	}
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":               ".jpg",
		"image/png":                ".png",
		"image/webp":               ".webp",
		"image/gif; charset=utf-8": ".gif",
		"not a type":               "",
	}
	for contentType, want := range cases {
		if got := extensionFor(contentType); got != want {
			t.Errorf("extensionFor(%q) = %q, want %q", contentType, got, want)
		}
	}
}
