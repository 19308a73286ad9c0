package scraper

import (
	"fmt"

	"redscraper/internal/browser"
	"redscraper/internal/types"
)

// PostTag is the feed element rendered once per post.
const PostTag = "shreddit-post"

// ExtractStub maps a feed node's declared attributes onto a PostStub.
// feedIndex is the node's position in the feed as observed by the discovery
// loop; it is used when the node does not declare its own index.
func ExtractStub(node browser.Node, feedIndex int) (types.PostStub, error) {
	id, ok, err := stringAttr(node, "id")
	if err != nil {
		return types.PostStub{}, fmt.Errorf("read id attribute: %w", err)
	}
	if !ok || id == "" {
		return types.PostStub{}, fmt.Errorf("feed node at index %d has no id", feedIndex)
	}

	stub := types.PostStub{
		ID:        id,
		FeedIndex: feedIndex,
	}
	stub.Permalink, _, _ = stringAttr(node, "permalink")
	stub.ContentHref, _, _ = stringAttr(node, "content-href")
	stub.Title, _, _ = stringAttr(node, "post-title")
	stub.Author, _, _ = stringAttr(node, "author")
	stub.PostType, _, _ = stringAttr(node, "post-type")

	if s, ok, _ := stringAttr(node, "score"); ok {
		stub.Score = types.ParseIntAttr(s)
	}
	if s, ok, _ := stringAttr(node, "comment-count"); ok {
		stub.CommentCount = types.ParseIntAttr(s)
	}
	if s, ok, _ := stringAttr(node, "created-timestamp"); ok {
		stub.CreatedAt = types.ParseTimeAttr(s)
	}
	if s, ok, _ := stringAttr(node, "feedindex"); ok {
		stub.FeedIndex = types.ParseIntAttr(s)
	}
	s, ok, _ := stringAttr(node, "is-not-brand-safe")
	stub.NotBrandSafe = types.ParseBoolAttr(s, ok)

	return stub, nil
}

// stringAttr reads one attribute, distinguishing absent from empty.
func stringAttr(node browser.Node, name string) (string, bool, error) {
	v, err := node.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}
