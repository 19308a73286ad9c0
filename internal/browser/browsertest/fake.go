// Package browsertest provides in-memory fakes of the browser surface for
// tests. No rendering engine is involved.
package browsertest

import (
	"context"
	"sync"

	"redscraper/internal/browser"
)

// FakeNode is a scripted element.
type FakeNode struct {
	Attrs       map[string]string
	TextContent string
	InnerHTML   string

	// Children maps a CSS selector to the nodes a query for it returns.
	// Tests mutate this from OnClick to simulate load-more expansion.
	Children map[string][]browser.Node

	// OnClick runs when the node is clicked.
	OnClick func()

	Clicks int
	mu     sync.Mutex
}

// NewFakeNode creates a node with the given attributes.
func NewFakeNode(attrs map[string]string) *FakeNode {
	return &FakeNode{Attrs: attrs, Children: make(map[string][]browser.Node)}
}

func (n *FakeNode) Attribute(name string) (*string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.Attrs[name]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (n *FakeNode) Text() (string, error) { return n.TextContent, nil }

func (n *FakeNode) HTML() (string, error) { return n.InnerHTML, nil }

func (n *FakeNode) Element(selector string) (browser.Node, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	kids := n.Children[selector]
	if len(kids) == 0 {
		return nil, nil
	}
	return kids[0], nil
}

func (n *FakeNode) Elements(selector string) ([]browser.Node, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]browser.Node(nil), n.Children[selector]...), nil
}

func (n *FakeNode) Click() error {
	n.mu.Lock()
	n.Clicks++
	fn := n.OnClick
	n.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

// SetChildren replaces the nodes a selector query returns.
func (n *FakeNode) SetChildren(selector string, kids ...browser.Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Children[selector] = kids
}

// FakeSurface is a scripted page session.
type FakeSurface struct {
	// Tags maps a tag name to its current nodes.
	Tags map[string][]browser.Node

	// ScrollTag, when set with Snapshots, makes Nodes(ScrollTag) return the
	// snapshot for the current scroll position; each ScrollAndWait advances
	// one snapshot and reports growth until the last one is reached.
	ScrollTag string
	Snapshots [][]browser.Node

	PageHTML string

	idx     int
	Scrolls int
	Settles int
	Closes  int
	mu      sync.Mutex
}

// NewFakeSurface creates an empty surface.
func NewFakeSurface() *FakeSurface {
	return &FakeSurface{Tags: make(map[string][]browser.Node)}
}

func (s *FakeSurface) Nodes(tag string) ([]browser.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tag == s.ScrollTag && s.Snapshots != nil {
		return append([]browser.Node(nil), s.Snapshots[s.idx]...), nil
	}
	return append([]browser.Node(nil), s.Tags[tag]...), nil
}

func (s *FakeSurface) CountNodes(tag string) (int, error) {
	nodes, err := s.Nodes(tag)
	return len(nodes), err
}

func (s *FakeSurface) ScrollAndWait(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Scrolls++
	if s.idx+1 < len(s.Snapshots) {
		s.idx++
		return true, nil
	}
	return false, nil
}

func (s *FakeSurface) WaitSettle() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Settles++
	return nil
}

func (s *FakeSurface) HTML() (string, error) { return s.PageHTML, nil }

func (s *FakeSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closes++
	return nil
}

// FakeOpener hands out surfaces by URL and records every open.
type FakeOpener struct {
	// Surfaces maps a URL to the surface Open returns for it. When a URL is
	// missing, Default is used.
	Surfaces map[string]*FakeSurface
	Default  func(url string) *FakeSurface

	// Err, when set, fails every Open.
	Err error

	Opened []string
	mu     sync.Mutex
}

// NewFakeOpener creates an opener with no scripted surfaces.
func NewFakeOpener() *FakeOpener {
	return &FakeOpener{Surfaces: make(map[string]*FakeSurface)}
}

func (o *FakeOpener) Open(ctx context.Context, url string) (browser.Surface, error) {
	o.mu.Lock()
	o.Opened = append(o.Opened, url)
	o.mu.Unlock()

	if o.Err != nil {
		return nil, o.Err
	}
	if s, ok := o.Surfaces[url]; ok {
		return s, nil
	}
	if o.Default != nil {
		return o.Default(url), nil
	}
	return NewFakeSurface(), nil
}

// OpenCount returns how many surfaces were opened.
func (o *FakeOpener) OpenCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Opened)
}
