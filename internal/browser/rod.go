package browser

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"redscraper/internal/config"
	"redscraper/internal/types"
)

// Browser wraps a rod browser and opens page surfaces from it.
type Browser struct {
	browser     *rod.Browser
	cfg         *config.BrowserConfig
	pageTimeout time.Duration
	scrollMin   time.Duration
	scrollMax   time.Duration
	logger      *slog.Logger
	uaIndex     atomic.Int64
}

// Launch starts a Chromium instance and connects to it.
func Launch(cfg *config.Config, logger *slog.Logger) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Browser.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	if cfg.Browser.WindowSize != "" {
		l = l.Set("window-size", cfg.Browser.WindowSize)
	}

	launchURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(launchURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	logger = logger.With("component", "browser")
	logger.Info("browser ready",
		"headless", cfg.Browser.Headless,
		"stealth", cfg.Browser.Stealth,
	)

	return &Browser{
		browser:     b,
		cfg:         &cfg.Browser,
		pageTimeout: cfg.Scraper.PageTimeout,
		scrollMin:   cfg.Scraper.ScrollMinDelay,
		scrollMax:   cfg.Scraper.ScrollMaxDelay,
		logger:      logger,
	}, nil
}

// Open creates a fresh page, navigates to the URL, and waits for the page to
// stabilize. The returned surface is exclusively owned by the caller.
func (b *Browser) Open(ctx context.Context, url string) (Surface, error) {
	var page *rod.Page
	var err error

	if b.cfg.Stealth {
		page, err = stealth.Page(b.browser)
	} else {
		page, err = b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, &types.SurfaceError{Op: "open", URL: url, Err: err}
	}

	page = page.Context(ctx)

	if ua := b.nextUserAgent(); ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			b.logger.Warn("failed to set user agent", "error", err)
		}
	}

	if err := page.Timeout(b.pageTimeout).Navigate(url); err != nil {
		_ = page.Close()
		return nil, &types.SurfaceError{Op: "navigate", URL: url, Err: err}
	}
	if err := page.Timeout(b.pageTimeout).WaitStable(300 * time.Millisecond); err != nil {
		b.logger.Warn("page stability timeout, continuing", "url", url, "error", err)
	}

	return &pageSurface{
		page:      page,
		scrollMin: b.scrollMin,
		scrollMax: b.scrollMax,
		logger:    b.logger,
	}, nil
}

// Close shuts down the browser process.
func (b *Browser) Close() error {
	if b.browser != nil {
		return b.browser.Close()
	}
	return nil
}

// nextUserAgent rotates through the configured user agents.
func (b *Browser) nextUserAgent() string {
	if len(b.cfg.UserAgents) == 0 {
		return ""
	}
	idx := b.uaIndex.Add(1)
	return b.cfg.UserAgents[int(idx)%len(b.cfg.UserAgents)]
}

// pageSurface implements Surface on a rod page.
type pageSurface struct {
	page      *rod.Page
	scrollMin time.Duration
	scrollMax time.Duration
	logger    *slog.Logger
	closed    atomic.Bool
}

func (s *pageSurface) Nodes(tag string) ([]Node, error) {
	if s.closed.Load() {
		return nil, types.ErrSurfaceClosed
	}
	els, err := s.page.Elements(tag)
	if err != nil {
		return nil, &types.SurfaceError{Op: "nodes", Err: err}
	}
	nodes := make([]Node, len(els))
	for i, el := range els {
		nodes[i] = &rodNode{el: el}
	}
	return nodes, nil
}

func (s *pageSurface) CountNodes(tag string) (int, error) {
	nodes, err := s.Nodes(tag)
	if err != nil {
		return 0, err
	}
	return len(nodes), nil
}

// ScrollAndWait scrolls one page height and sleeps a randomized delay so the
// feed has time to render. Growth is detected by comparing scroll heights.
func (s *pageSurface) ScrollAndWait(ctx context.Context) (bool, error) {
	if s.closed.Load() {
		return false, types.ErrSurfaceClosed
	}

	before, err := s.page.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return false, &types.SurfaceError{Op: "scroll", Err: err}
	}
	if _, err := s.page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		return false, &types.SurfaceError{Op: "scroll", Err: err}
	}

	delay := s.scrollMin
	if s.scrollMax > s.scrollMin {
		delay += time.Duration(rand.Int63n(int64(s.scrollMax - s.scrollMin)))
	}
	s.logger.Debug("scroll settle", "delay", delay.Round(time.Millisecond))
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(delay):
	}

	after, err := s.page.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return false, &types.SurfaceError{Op: "scroll", Err: err}
	}
	return after.Value.Int() != before.Value.Int(), nil
}

func (s *pageSurface) WaitSettle() error {
	if s.closed.Load() {
		return types.ErrSurfaceClosed
	}
	return s.page.WaitStable(500 * time.Millisecond)
}

func (s *pageSurface) HTML() (string, error) {
	if s.closed.Load() {
		return "", types.ErrSurfaceClosed
	}
	return s.page.HTML()
}

func (s *pageSurface) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.page.Close()
}

// rodNode implements Node on a rod element.
type rodNode struct {
	el *rod.Element
}

func (n *rodNode) Attribute(name string) (*string, error) {
	return n.el.Attribute(name)
}

func (n *rodNode) Text() (string, error) {
	return n.el.Text()
}

func (n *rodNode) HTML() (string, error) {
	v, err := n.el.Eval(`() => this.innerHTML`)
	if err != nil {
		return "", &types.SurfaceError{Op: "html", Err: err}
	}
	return v.Value.Str(), nil
}

func (n *rodNode) Element(selector string) (Node, error) {
	has, el, err := n.el.Has(selector)
	if err != nil {
		return nil, &types.SurfaceError{Op: "element", Err: err}
	}
	if !has {
		return nil, nil
	}
	return &rodNode{el: el}, nil
}

func (n *rodNode) Elements(selector string) ([]Node, error) {
	els, err := n.el.Elements(selector)
	if err != nil {
		return nil, &types.SurfaceError{Op: "elements", Err: err}
	}
	nodes := make([]Node, len(els))
	for i, el := range els {
		nodes[i] = &rodNode{el: el}
	}
	return nodes, nil
}

func (n *rodNode) Click() error {
	return n.el.Click(proto.InputMouseButtonLeft, 1)
}
