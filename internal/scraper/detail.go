package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"redscraper/internal/browser"
	"redscraper/internal/comments"
	"redscraper/internal/media"
	"redscraper/internal/types"
)

// bodySelector matches the rendered rich-text body inside a post element.
const bodySelector = `div[id$="-post-rtjson-content"]`

// DetailFetcher opens each post's own page and assembles a PostDetail from
// it. Every fetch opens a fresh surface and releases it on all exit paths.
type DetailFetcher struct {
	opener       browser.Opener
	siteRoot     *url.URL
	commentLimit int
	mediaDir     string
	resolver     *media.Resolver
	stats        *Stats
	logger       *slog.Logger
}

// DetailOptions configures what a detail fetch collects beyond the body.
type DetailOptions struct {
	// CommentLimit caps the total comment nodes expanded per post. Zero
	// disables comment scraping entirely.
	CommentLimit int

	// MediaDir is where resolved media is saved. Empty disables media.
	MediaDir string
}

// NewDetailFetcher creates a fetcher for posts under the given site root
// (e.g. "https://www.reddit.com"). resolver may be nil when opts.MediaDir is
// empty.
func NewDetailFetcher(opener browser.Opener, siteRoot string, opts DetailOptions, resolver *media.Resolver, stats *Stats, logger *slog.Logger) (*DetailFetcher, error) {
	root, err := url.Parse(siteRoot)
	if err != nil {
		return nil, err
	}
	return &DetailFetcher{
		opener:       opener,
		siteRoot:     root,
		commentLimit: opts.CommentLimit,
		mediaDir:     opts.MediaDir,
		resolver:     resolver,
		stats:        stats,
		logger:       logger.With("component", "detail"),
	}, nil
}

// Fetch opens the post's page, extracts the body, and optionally resolves
// media and expands comments. On any error nothing is returned; a partial
// detail never escapes.
func (f *DetailFetcher) Fetch(ctx context.Context, stub types.PostStub) (*types.PostDetail, error) {
	target, err := f.siteRoot.Parse(stub.Permalink)
	if err != nil {
		return nil, &types.SurfaceError{Op: "resolve", URL: stub.Permalink, Err: err}
	}

	surface, err := f.opener.Open(ctx, target.String())
	if err != nil {
		return nil, &types.SurfaceError{Op: "open", URL: target.String(), Err: err}
	}
	defer surface.Close()

	detail := &types.PostDetail{Stub: stub, ScrapedAt: time.Now().UTC()}
	detail.Body = f.extractBody(surface)

	if f.mediaDir != "" && f.resolver != nil && stub.ContentHref != "" {
		paths, err := f.resolver.ResolveAndSave(ctx, surface, stub.ContentHref, stub.ID, f.mediaDir)
		if err != nil {
			return nil, err
		}
		detail.MediaPaths = paths
		f.stats.MediaSaved.Add(int64(len(paths)))
	}

	if f.commentLimit > 0 {
		expander := comments.NewExpander(surface, f.commentLimit, f.logger)
		tree, err := expander.Expand()
		if err != nil {
			return nil, err
		}
		detail.Comments = tree
		f.stats.Comments.Add(int64(tree.Size()))
	}

	return detail, nil
}

// extractBody reads the post's rich-text body. Absence is normal for link
// and media posts.
func (f *DetailFetcher) extractBody(surface browser.Surface) string {
	nodes, err := surface.Nodes(PostTag)
	if err != nil || len(nodes) == 0 {
		return ""
	}
	body, err := nodes[0].Element(bodySelector)
	if err != nil || body == nil {
		return ""
	}
	raw, err := body.HTML()
	if err != nil {
		return ""
	}
	return FormatBody(raw)
}

// FormatBody flattens a rich-text body fragment into readable plain text:
// one line per paragraph, heading, or list item, in document order.
func FormatBody(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var lines []string
	doc.Find("p, h1, h2, h3, li").Each(func(_ int, sel *goquery.Selection) {
		// Nested block elements are emitted by their own match.
		if sel.Is("li") && sel.Find("p, h1, h2, h3").Length() > 0 {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		if sel.Is("li") {
			text = "- " + text
		}
		lines = append(lines, text)
	})
	return strings.Join(lines, "\n")
}
