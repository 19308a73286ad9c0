package pipeline

import (
	"strings"
	"sync"

	"redscraper/internal/types"
)

// TrimMiddleware trims whitespace from the text fields of a post.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(detail *types.PostDetail) (*types.PostDetail, error) {
	detail.Stub.Title = strings.TrimSpace(detail.Stub.Title)
	detail.Stub.Author = strings.TrimSpace(detail.Stub.Author)
	detail.Body = strings.TrimSpace(detail.Body)
	return detail, nil
}

// MinScoreMiddleware drops posts below a score threshold.
type MinScoreMiddleware struct {
	Min int
}

func (m *MinScoreMiddleware) Name() string { return "min_score" }

func (m *MinScoreMiddleware) Process(detail *types.PostDetail) (*types.PostDetail, error) {
	if detail.Stub.Score < m.Min {
		return nil, nil
	}
	return detail, nil
}

// BrandSafetyMiddleware drops posts the feed marks as not brand safe.
type BrandSafetyMiddleware struct{}

func (m *BrandSafetyMiddleware) Name() string { return "brand_safety" }

func (m *BrandSafetyMiddleware) Process(detail *types.PostDetail) (*types.PostDetail, error) {
	if detail.Stub.NotBrandSafe {
		return nil, nil
	}
	return detail, nil
}

// RequiredFieldsMiddleware drops posts missing any named field. Recognized
// names: id, title, author, body.
type RequiredFieldsMiddleware struct {
	Fields []string
}

func (m *RequiredFieldsMiddleware) Name() string { return "required_fields" }

func (m *RequiredFieldsMiddleware) Process(detail *types.PostDetail) (*types.PostDetail, error) {
	for _, field := range m.Fields {
		var v string
		switch field {
		case "id":
			v = detail.Stub.ID
		case "title":
			v = detail.Stub.Title
		case "author":
			v = detail.Stub.Author
		case "body":
			v = detail.Body
		default:
			continue
		}
		if v == "" {
			return nil, nil
		}
	}
	return detail, nil
}

// AuthorExcludeMiddleware drops posts from listed authors, typically bots.
type AuthorExcludeMiddleware struct {
	Authors []string
}

func (m *AuthorExcludeMiddleware) Name() string { return "author_exclude" }

func (m *AuthorExcludeMiddleware) Process(detail *types.PostDetail) (*types.PostDetail, error) {
	for _, a := range m.Authors {
		if strings.EqualFold(a, detail.Stub.Author) {
			return nil, nil
		}
	}
	return detail, nil
}

// DedupMiddleware drops posts whose identifier was already processed. The
// discovery loop already deduplicates within one run; this guards merged or
// repeated runs feeding one storage target.
type DedupMiddleware struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDedupMiddleware() *DedupMiddleware {
	return &DedupMiddleware{seen: make(map[string]struct{})}
}

func (m *DedupMiddleware) Name() string { return "dedup" }

func (m *DedupMiddleware) Process(detail *types.PostDetail) (*types.PostDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.seen[detail.Stub.ID]; exists {
		return nil, nil
	}
	m.seen[detail.Stub.ID] = struct{}{}
	return detail, nil
}
