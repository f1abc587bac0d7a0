package pipeline

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Middleware processes an article and returns the (possibly modified)
// article. Return nil to drop the article from the pipeline.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms an article. Return nil to drop it.
	Process(a *types.Article) (*types.Article, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the article through all middleware in order.
func (p *Pipeline) Process(a *types.Article) (*types.Article, error) {
	current := a

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{
				Stage:   mw.Name(),
				Article: current,
				Err:     err,
			}
		}
		if result == nil {
			p.logger.Debug("article dropped", "stage", mw.Name(), "url", a.URL)
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// Run processes articles in input order and returns the survivors in the
// same order. Middlewares see the articles sequentially, so stateful stages
// such as deduplication keep the first occurrence.
func (p *Pipeline) Run(articles []types.Article) ([]types.Article, error) {
	out := make([]types.Article, 0, len(articles))
	for i := range articles {
		a := articles[i]
		result, err := p.Process(&a)
		if err != nil {
			return nil, err
		}
		if result != nil {
			out = append(out, *result)
		}
	}
	p.logger.Debug("pipeline run", "in", len(articles), "out", len(out))
	return out, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}

// --- Built-in Middleware ---

// RequiredFieldsMiddleware drops articles whose title or content is empty
// or an adapter sentinel. URL and outlet are required when RequireIdentity
// is set.
type RequiredFieldsMiddleware struct {
	RequireIdentity bool
}

func (m *RequiredFieldsMiddleware) Name() string { return "required_fields" }

func (m *RequiredFieldsMiddleware) Process(a *types.Article) (*types.Article, error) {
	if !a.Complete() {
		return nil, nil
	}
	if m.RequireIdentity && (a.URL == "" || a.Outlet == "") {
		return nil, nil
	}
	return a, nil
}

// DedupMiddleware drops articles whose key was already seen. The first
// occurrence wins.
type DedupMiddleware struct {
	mu   sync.Mutex
	seen map[string]struct{}
	key  string // "title" or "url"
}

func NewDedupMiddleware(key string) *DedupMiddleware {
	return &DedupMiddleware{
		seen: make(map[string]struct{}),
		key:  key,
	}
}

func (m *DedupMiddleware) Name() string { return "dedup_" + m.key }

func (m *DedupMiddleware) Process(a *types.Article) (*types.Article, error) {
	val := a.Title
	if m.key == "url" {
		val = a.URL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.seen[val]; exists {
		return nil, nil // Drop duplicate
	}
	m.seen[val] = struct{}{}
	return a, nil
}

// TrimMiddleware trims whitespace from every text field and lowercases the
// outlet identifier.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.URL = strings.TrimSpace(a.URL)
	a.Title = strings.TrimSpace(a.Title)
	a.Content = strings.TrimSpace(a.Content)
	a.Outlet = strings.ToLower(strings.TrimSpace(a.Outlet))
	return a, nil
}
