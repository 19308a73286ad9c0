// Package media classifies a post's content reference, resolves it to zero or
// more source URLs, and downloads each with bounded retry. One asset's
// permanent failure never aborts its siblings or the parent fetch.
package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync/atomic"
	"time"

	"redscraper/internal/browser"
	"redscraper/internal/config"
	"redscraper/internal/retry"
	"redscraper/internal/types"
)

const galleryTag = "gallery-carousel"

var (
	// galleryPattern matches a reddit gallery permalink.
	galleryPattern = regexp.MustCompile(`(?i)^https?://(www\.)?reddit\.com/gallery/[A-Za-z0-9_]+$`)

	// mediaPattern matches a direct media URL, optional query string.
	mediaPattern = regexp.MustCompile(`(?i)^https?://.*\.(png|jpg|jpeg|gif|bmp|webp)(\?.*)?$`)

	// namePattern extracts the trailing name segment of a gallery image URL.
	namePattern = regexp.MustCompile(`.*-(.*?)\.`)
)

// Asset is one resolved media source.
type Asset struct {
	URL  string
	Name string
}

// Stats tracks download counters across a run.
type Stats struct {
	Saved  atomic.Int64
	Failed atomic.Int64
	Bytes  atomic.Int64
}

// Resolver downloads post media. Safe for concurrent use by dispatch workers.
type Resolver struct {
	client      *http.Client
	attempts    int
	delay       time.Duration
	maxBodySize int64
	logger      *slog.Logger
	stats       Stats
}

// NewResolver creates a resolver from the media configuration.
func NewResolver(cfg *config.MediaConfig, logger *slog.Logger) *Resolver {
	return &Resolver{
		client:      newClient(cfg.FetchTimeout),
		attempts:    cfg.RetryAttempts,
		delay:       cfg.RetryDelay,
		maxBodySize: cfg.MaxBodySize,
		logger:      logger.With("component", "media"),
	}
}

// Stats returns the resolver's download counters.
func (r *Resolver) Stats() *Stats { return &r.stats }

// Resolve classifies a content reference and resolves it to source URLs.
// Gallery references are resolved by reading image nodes from the open item
// page surface; direct media references resolve to themselves; anything else
// returns nil, which is not an error.
func (r *Resolver) Resolve(surface browser.Surface, contentRef, postID string) []Asset {
	switch {
	case galleryPattern.MatchString(contentRef):
		return r.galleryAssets(surface, postID)
	case mediaPattern.MatchString(contentRef):
		return []Asset{{URL: contentRef, Name: postID}}
	default:
		return nil
	}
}

// ResolveAndSave resolves the content reference and persists each asset under
// destDir/postID/. It returns the saved paths, or nil when the post has no
// media or every asset failed permanently.
func (r *Resolver) ResolveAndSave(ctx context.Context, surface browser.Surface, contentRef, postID, destDir string) ([]string, error) {
	assets := r.Resolve(surface, contentRef, postID)
	if len(assets) == 0 {
		return nil, nil
	}

	dir := filepath.Join(destDir, postID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	var paths []string
	for _, asset := range assets {
		path, err := retry.DoWithResult(func() (string, error) {
			return r.fetchAndSave(ctx, asset.URL, dir, asset.Name)
		}, r.attempts, r.delay)
		if err != nil {
			r.stats.Failed.Add(1)
			r.logger.Error("skipping media asset",
				"post_id", postID,
				"url", asset.URL,
				"error", &types.MediaError{URL: asset.URL, PostID: postID, Err: err},
			)
			continue
		}
		r.stats.Saved.Add(1)
		r.logger.Info("media saved", "post_id", postID, "path", path)
		paths = append(paths, path)
	}

	if len(paths) == 0 {
		return nil, nil
	}
	return paths, nil
}

// galleryAssets reads the gallery carousel on the open item page and collects
// every image source that looks like direct media.
func (r *Resolver) galleryAssets(surface browser.Surface, postID string) []Asset {
	carousels, err := surface.Nodes(galleryTag)
	if err != nil || len(carousels) == 0 {
		r.logger.Warn("gallery reference without carousel", "post_id", postID)
		return nil
	}

	images, err := carousels[0].Elements("img.absolute")
	if err != nil {
		r.logger.Warn("gallery image query failed", "post_id", postID, "error", err)
		return nil
	}

	var assets []Asset
	for i, img := range images {
		src, err := img.Attribute("src")
		if err != nil || src == nil || !mediaPattern.MatchString(*src) {
			continue
		}
		name := fmt.Sprintf("%s_%d", postID, i)
		if m := namePattern.FindStringSubmatch(*src); m != nil {
			name = m[1]
		}
		assets = append(assets, Asset{URL: *src, Name: name})
	}
	return assets
}

// fetchAndSave streams one URL to disk. The file extension is inferred from
// the response content type.
func (r *Resolver) fetchAndSave(ctx context.Context, rawURL, dir, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	path := filepath.Join(dir, name+extensionFor(contentType))

	var reader io.Reader = resp.Body
	if r.maxBodySize > 0 {
		reader = io.LimitReader(reader, r.maxBodySize)
	}
	reader, err = decompressReader(resp.Header.Get("Content-Encoding"), reader)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, reader)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	r.stats.Bytes.Add(n)

	return path, nil
}

// extensionFor maps a response content type to a file extension. Common image
// types are pinned so the choice is stable across platforms.
func extensionFor(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mt {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	}
	if exts, err := mime.ExtensionsByType(mt); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
