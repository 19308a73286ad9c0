// Package pipeline post-processes fetched post details before storage.
// Middleware run in registration order; any stage may drop a post.
package pipeline

import (
	"fmt"
	"log/slog"

	"redscraper/internal/types"
)

// Middleware processes a post detail and returns the (possibly modified)
// detail. Return nil to drop the post from the pipeline.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a detail. Return nil to drop the post.
	Process(detail *types.PostDetail) (*types.PostDetail, error)
}

// StageError reports which stage rejected a post.
type StageError struct {
	Stage  string
	PostID string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s failed for post %s: %v", e.Stage, e.PostID, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates an empty Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Use appends a middleware to the chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}

// Process runs the detail through all middleware in order. A nil result with
// nil error means the post was dropped.
func (p *Pipeline) Process(detail *types.PostDetail) (*types.PostDetail, error) {
	current := detail

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &StageError{
				Stage:  mw.Name(),
				PostID: current.Stub.ID,
				Err:    err,
			}
		}
		if result == nil {
			p.logger.Debug("post dropped", "stage", mw.Name(), "post_id", detail.Stub.ID)
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// ProcessAll filters a result slice, keeping failed slots untouched so the
// caller still sees every failure. Returned order matches input order.
func (p *Pipeline) ProcessAll(results []types.Result) ([]types.Result, error) {
	if p.Len() == 0 {
		return results, nil
	}

	kept := results[:0:0]
	for _, r := range results {
		if r.Failed() {
			kept = append(kept, r)
			continue
		}
		detail, err := p.Process(r.Detail)
		if err != nil {
			return nil, err
		}
		if detail == nil {
			continue
		}
		r.Detail = detail
		kept = append(kept, r)
	}
	return kept, nil
}
