// Package comments expands a post's reply tree on an open page surface.
// Expansion is pre-order, tracks visited nodes across repeated "load more"
// clicks, and stops exactly at the global visit quota.
package comments

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"redscraper/internal/browser"
	"redscraper/internal/types"
)

const (
	// CommentTag is the element name of a single reply node.
	CommentTag = "shreddit-comment"

	// bodySelector matches the raw rich-text content inside a reply node.
	// The content element is present even when the node renders collapsed.
	bodySelector = `div[id$="-post-rtjson-content"]`

	// moreRepliesSelector matches the "load more" affordance under a reply.
	moreRepliesSelector = `faceplate-partial button`
)

// errQuotaReached unwinds the expansion once the visit quota is hit. Partial
// results are valid, so it never escapes Expand.
var errQuotaReached = errors.New("comment quota reached")

// Expander walks the reply tree of one post. Owned by a single worker; the
// visited set is not shared across posts.
type Expander struct {
	surface browser.Surface
	quota   int
	visited map[string]struct{}
	count   int
	logger  *slog.Logger
}

// NewExpander creates an expander for the surface's open post page.
func NewExpander(surface browser.Surface, quota int, logger *slog.Logger) *Expander {
	return &Expander{
		surface: surface,
		quota:   quota,
		visited: make(map[string]struct{}),
		logger:  logger.With("component", "comments"),
	}
}

// Visited returns the number of nodes recorded so far.
func (e *Expander) Visited() int { return e.count }

// Expand walks top-level replies in document order, expanding nested replies
// and "load more" affordances until the tree is exhausted or the quota is
// reached. A quota stop returns the partial tree with no error.
func (e *Expander) Expand() (*types.CommentTree, error) {
	tree := &types.CommentTree{}
	if e.quota <= 0 {
		return tree, nil
	}

	nodes, err := e.surface.Nodes(CommentTag)
	if err != nil {
		return tree, err
	}

	for _, node := range nodes {
		if depthAttr(node) != 0 {
			continue // nested replies are reached through their parent
		}

		c, err := e.visit(node, 0)
		if c != nil {
			tree.TopLevel = append(tree.TopLevel, c)
		}
		if errors.Is(err, errQuotaReached) {
			e.logger.Debug("comment quota reached", "visited", e.count)
			break
		}
		if err != nil {
			// A broken subtree does not invalidate what was collected.
			e.logger.Warn("comment subtree failed", "error", err)
		}
	}

	tree.Visited = e.count
	return tree, nil
}

// visit applies the per-node expansion state machine: scrape the node, stop
// at quota, then check for children, expanding load-more affordances until
// children appear or none remain.
func (e *Expander) visit(node browser.Node, depth int) (*types.Comment, error) {
	c := e.scrape(node, depth)
	if c == nil {
		return nil, nil // already visited or unidentifiable
	}

	if e.count >= e.quota {
		return c, errQuotaReached
	}

	for {
		children, err := e.childNodes(node, depth+1)
		if err != nil {
			return c, err
		}

		if len(children) > 0 {
			for _, childNode := range children {
				child, err := e.visit(childNode, depth+1)
				if child != nil {
					c.Children = append(c.Children, child)
				}
				if err != nil {
					return c, err
				}
			}
			return c, nil
		}

		more, err := node.Element(moreRepliesSelector)
		if err != nil {
			return c, err
		}
		if more == nil {
			return c, nil // leaf
		}

		if err := more.Click(); err != nil {
			return c, err
		}
		if err := e.surface.WaitSettle(); err != nil {
			return c, err
		}
		// Loop: the click either revealed children or removed the affordance.
	}
}

// scrape records a node, returning nil when the identifier is missing or was
// seen before. Recording is what consumes quota.
func (e *Expander) scrape(node browser.Node, depth int) *types.Comment {
	id := attr(node, "thingid")
	if id == "" {
		return nil
	}
	if _, seen := e.visited[id]; seen {
		return nil
	}
	e.visited[id] = struct{}{}
	e.count++

	return &types.Comment{
		ID:        id,
		Author:    attr(node, "author"),
		Score:     types.ParseIntAttr(attr(node, "score")),
		Depth:     depth,
		Permalink: attr(node, "permalink"),
		PostID:    attr(node, "postid"),
		Text:      e.rawText(node),
	}
}

// childNodes returns the node's direct replies: descendant comment elements
// whose depth attribute is exactly one below the parent.
func (e *Expander) childNodes(node browser.Node, depth int) ([]browser.Node, error) {
	descendants, err := node.Elements(CommentTag)
	if err != nil {
		return nil, err
	}
	var children []browser.Node
	for _, d := range descendants {
		if depthAttr(d) == depth {
			children = append(children, d)
		}
	}
	return children, nil
}

// rawText extracts the comment text from the content element's inner HTML,
// so collapsed nodes read the same as expanded ones.
func (e *Expander) rawText(node browser.Node) string {
	body, err := node.Element(bodySelector)
	if err != nil || body == nil {
		return ""
	}
	raw, err := body.HTML()
	if err != nil || raw == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(doc))
}

func attr(node browser.Node, name string) string {
	v, err := node.Attribute(name)
	if err != nil || v == nil {
		return ""
	}
	return *v
}

func depthAttr(node browser.Node) int {
	return types.ParseIntAttr(attr(node, "depth"))
}
