// Package browser owns every browser-automation concern: launching the
// rendering engine, opening and releasing page sessions, and exposing the
// narrow surface the scraping core works against. The core never constructs
// browser configuration and never touches rod directly.
package browser

import "context"

// Node is a handle to a single renderable element on a surface.
type Node interface {
	// Attribute returns the named attribute, or nil if absent.
	Attribute(name string) (*string, error)

	// Text returns the visible text content of the element.
	Text() (string, error)

	// HTML returns the element's inner HTML. Unlike Text, the result does
	// not depend on the element's rendered (e.g. collapsed) state.
	HTML() (string, error)

	// Element returns the first descendant matching the CSS selector, or
	// nil if none matches.
	Element(selector string) (Node, error)

	// Elements returns all descendants matching the CSS selector in
	// document order.
	Elements(selector string) ([]Node, error)

	// Click clicks the element.
	Click() error
}

// Surface is one open page session. Each surface is exclusively owned by the
// goroutine that opened it and must be released via Close on every exit path.
type Surface interface {
	// Nodes returns the current renderable elements with the given tag name
	// in document order.
	Nodes(tag string) ([]Node, error)

	// CountNodes returns the number of elements with the given tag name.
	CountNodes(tag string) (int, error)

	// ScrollAndWait scrolls to the bottom, waits a randomized settle delay,
	// and reports whether the page grew.
	ScrollAndWait(ctx context.Context) (bool, error)

	// WaitSettle blocks until the page stops mutating, used after clicking a
	// load-more affordance.
	WaitSettle() error

	// HTML returns the full page HTML.
	HTML() (string, error)

	// Close releases the session.
	Close() error
}

// Opener opens fresh surfaces. Detail fetches each open their own.
type Opener interface {
	Open(ctx context.Context, url string) (Surface, error)
}
