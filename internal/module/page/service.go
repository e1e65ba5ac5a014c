package page

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"

	"github.com/simp-lee/pageshell/internal/pkg/metrics"
	"github.com/simp-lee/pageshell/internal/pkg/pagecache"
	"github.com/simp-lee/pageshell/internal/route"
)

// Renderer executes layout and content templates.
type Renderer interface {
	Execute(w io.Writer, name string, data any) error
	Fragment(name string, data any) (template.HTML, bool, error)
}

// Service renders the page registered for a path.
type Service struct {
	resolver *route.Resolver
	renderer Renderer
	opts     Options
	nav      []route.Entry

	cache   *pagecache.Cache
	metrics *metrics.Collector
	logger  *slog.Logger
}

// ServiceOption configures optional Service collaborators.
type ServiceOption func(*Service)

// WithCache stores rendered pages in c. Without it every request renders.
func WithCache(c *pagecache.Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithMetrics counts renders and cache lookups in m.
func WithMetrics(m *metrics.Collector) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger used for cache write failures.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service. The Main layout navigation is built once
// from the resolver's table.
func NewService(resolver *route.Resolver, renderer Renderer, opts Options, options ...ServiceOption) (*Service, error) {
	if resolver == nil {
		return nil, errors.New("page: resolver is nil")
	}
	if renderer == nil {
		return nil, errors.New("page: renderer is nil")
	}

	s := &Service{
		resolver: resolver,
		renderer: renderer,
		opts:     opts,
		nav:      resolver.Table().ByLayout(route.LayoutMain),
		logger:   slog.Default(),
	}
	for _, o := range options {
		o(s)
	}
	return s, nil
}

// Resolver returns the resolver pages are looked up with.
func (s *Service) Resolver() *route.Resolver {
	return s.resolver
}

// Render returns the HTML document for path. The output depends only on the
// route table and templates, so it is cached under the canonical path.
func (s *Service) Render(path string) ([]byte, route.Tree, error) {
	tree, err := s.resolver.Resolve(path)
	if err != nil {
		return nil, route.Tree{}, err
	}
	key := tree.Entry.Path

	if s.cache != nil {
		body, ok := s.cache.Get(key)
		s.metrics.IncPageCache(ok)
		if ok {
			return body, tree, nil
		}
	}

	body, err := s.render(tree)
	if err != nil {
		return nil, tree, err
	}
	s.metrics.IncPageRender(string(tree.Layout), string(tree.Mode))

	if err := s.cache.Set(key, body); err != nil {
		s.logger.Warn("page cache write failed",
			slog.String("path", key),
			slog.Int("bytes", len(body)),
			slog.Any("error", err),
		)
	}
	return body, tree, nil
}

func (s *Service) render(tree route.Tree) ([]byte, error) {
	view := newView(tree, s.nav, s.opts)

	if tree.Mode == route.ModeServer {
		inner, ok, err := s.renderer.Fragment(contentTemplate(tree.Content), view)
		if err != nil {
			return nil, fmt.Errorf("render content %s: %w", tree.Content, err)
		}
		if ok {
			view.Inner = inner
		}
	}

	var buf bytes.Buffer
	if err := s.renderer.Execute(&buf, tree.Layout.Template(), view); err != nil {
		return nil, fmt.Errorf("render layout %s: %w", tree.Layout, err)
	}
	return buf.Bytes(), nil
}

func contentTemplate(component string) string {
	return "content/" + component + ".html"
}
