package types

// Comment is one node of a reply tree. Depth 0 marks a top-level reply.
// Children are owned by their parent: the tree has no back edges and no
// shared subtrees.
type Comment struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Score     int    `json:"score"`
	Depth     int    `json:"depth"`
	Permalink string `json:"permalink,omitempty"`
	PostID    string `json:"post_id,omitempty"`

	// Text is the raw comment text. It is populated even when the surface
	// renders the node collapsed.
	Text string `json:"text"`

	Children []*Comment `json:"children,omitempty"`
}

// CommentTree holds the top-level comments of a post in document order. The
// post itself is the implicit root.
type CommentTree struct {
	TopLevel []*Comment `json:"top_level"`

	// Visited is the total number of nodes recorded across the tree. Never
	// exceeds the expansion quota.
	Visited int `json:"visited"`
}

// Size counts the nodes actually present in the tree.
func (t *CommentTree) Size() int {
	n := 0
	var walk func(c *Comment)
	walk = func(c *Comment) {
		n++
		for _, child := range c.Children {
			walk(child)
		}
	}
	for _, c := range t.TopLevel {
		walk(c)
	}
	return n
}

// Find returns the subtree rooted at the given comment ID, or nil.
func (t *CommentTree) Find(id string) *Comment {
	var find func(c *Comment) *Comment
	find = func(c *Comment) *Comment {
		if c.ID == id {
			return c
		}
		for _, child := range c.Children {
			if got := find(child); got != nil {
				return got
			}
		}
		return nil
	}
	for _, c := range t.TopLevel {
		if got := find(c); got != nil {
			return got
		}
	}
	return nil
}
