// Package reddit provides a public SDK for embedding the scraper as a
// library.
//
// Example usage:
//
//	client := reddit.NewClient(
//	    reddit.WithPostLimit(25),
//	    reddit.WithCommentLimit(100),
//	    reddit.WithMediaDir("./media"),
//	    reddit.WithWorkers(4),
//	)
//
//	results, err := client.Scrape(ctx, "https://www.reddit.com/r/golang/hot")
package reddit

import (
	"context"
	"log/slog"
	"os"

	"redscraper/internal/browser"
	"redscraper/internal/config"
	"redscraper/internal/media"
	"redscraper/internal/scraper"
	"redscraper/internal/types"
)

// Result is one scraped post, or the failure that replaced it.
type Result = types.Result

// PostDetail is the full record of one scraped post.
type PostDetail = types.PostDetail

// Comment is one node of a post's reply tree.
type Comment = types.Comment

// Client runs scrapes over its own browser instance. A Client may run any
// number of sequential scrapes; Close releases the browser.
type Client struct {
	cfg     *config.Config
	logger  *slog.Logger
	browser *browser.Browser
}

// Option configures a Client.
type Option func(*config.Config)

// WithPostLimit caps discovered posts. Negative means unlimited.
func WithPostLimit(n int) Option {
	return func(c *config.Config) { c.Scraper.PostLimit = n }
}

// WithCommentLimit sets the per-post comment visit quota. Zero disables
// comment scraping.
func WithCommentLimit(n int) Option {
	return func(c *config.Config) { c.Scraper.CommentLimit = n }
}

// WithWorkers bounds concurrent detail-fetch sessions.
func WithWorkers(n int) Option {
	return func(c *config.Config) { c.Scraper.WorkerLimit = n }
}

// WithMediaDir enables media saving under the given directory.
func WithMediaDir(dir string) Option {
	return func(c *config.Config) { c.Media.Dir = dir }
}

// WithHeadless controls whether the browser renders a window.
func WithHeadless(headless bool) Option {
	return func(c *config.Config) { c.Browser.Headless = headless }
}

// WithUserAgents replaces the rotated user-agent list.
func WithUserAgents(agents ...string) Option {
	return func(c *config.Config) { c.Browser.UserAgents = agents }
}

// NewClient creates a Client with default configuration modified by opts.
// Logs go to stderr at info level; use NewClientWithLogger to override.
func NewClient(opts ...Option) *Client {
	return NewClientWithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)), opts...)
}

// NewClientWithLogger creates a Client that logs through the given logger.
func NewClientWithLogger(logger *slog.Logger, opts ...Option) *Client {
	cfg := config.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Client{cfg: cfg, logger: logger}
}

// Scrape runs one full feed scrape and returns results in discovery order.
// The browser is launched lazily on the first call.
func (c *Client) Scrape(ctx context.Context, feedURL string) ([]Result, error) {
	if c.browser == nil {
		b, err := browser.Launch(c.cfg, c.logger)
		if err != nil {
			return nil, err
		}
		c.browser = b
	}

	var resolver *media.Resolver
	if c.cfg.Media.Dir != "" {
		resolver = media.NewResolver(&c.cfg.Media, c.logger)
	}

	stats := scraper.NewStats()
	fetcher, err := scraper.NewDetailFetcher(c.browser, "https://www.reddit.com",
		scraper.DetailOptions{
			CommentLimit: c.cfg.Scraper.CommentLimit,
			MediaDir:     c.cfg.Media.Dir,
		}, resolver, stats, c.logger)
	if err != nil {
		return nil, err
	}

	s, err := scraper.New(c.browser, feedURL, c.cfg.Scraper.WorkerLimit, fetcher, stats, c.logger)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, c.cfg.Scraper.PostLimit)
}

// Close releases the browser. The Client is unusable afterwards.
func (c *Client) Close() error {
	if c.browser == nil {
		return nil
	}
	err := c.browser.Close()
	c.browser = nil
	return err
}
