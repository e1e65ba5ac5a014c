package app

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pageshell/internal/domain"
	"github.com/simp-lee/pageshell/internal/middleware"
	"github.com/simp-lee/pageshell/internal/pkg/metrics"
	"github.com/simp-lee/pageshell/internal/pkg/pagecache"
	"github.com/simp-lee/pageshell/internal/pkg/ratelimit"
	"github.com/simp-lee/pageshell/internal/route"
	"github.com/simp-lee/pageshell/web"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules  []Module
	Renderer *TemplateRenderer
	Table    *route.Table
	Mode     string // gin mode

	// Metrics is served at MetricsPath when both are set.
	Metrics     *metrics.Collector
	MetricsPath string

	// Cache and Limiter are reported by /health when set.
	Cache   *pagecache.Cache
	Limiter *ratelimit.Limiter
}

// requiredTemplates lists the pages the server cannot run without: one
// layout per shell plus every error page the handlers render.
func requiredTemplates() []string {
	codes := []int{
		http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
	}
	names := make([]string, 0, len(route.Layouts)+len(codes))
	for _, l := range route.Layouts {
		names = append(names, l.Template())
	}
	for _, code := range codes {
		names = append(names, middleware.ErrorTemplate(code))
	}
	return names
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}

	if err := registerStaticRoutes(r, deps.Mode); err != nil {
		return fmt.Errorf("register static routes: %w", err)
	}

	r.GET("/health", healthHandler(deps))

	if deps.Metrics != nil && deps.MetricsPath != "" {
		r.GET(deps.MetricsPath, gin.WrapH(deps.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	pages := r.Group("/")
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api, pages)
	}

	r.NoRoute(noRouteHandler())
	r.NoMethod(noRouteHandler())

	return nil
}

// healthHandler reports whether every required template parses and the
// route table is populated. Page cache counters and the number of tracked
// rate limit clients are included when those components are enabled.
func healthHandler(deps *RouteDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		templates := "ok"
		if deps.Renderer == nil || deps.Renderer.Check(requiredTemplates()...) != nil {
			templates = "error"
		}
		routes := "ok"
		if deps.Table.Len() == 0 {
			routes = "error"
		}

		status, code := "ok", http.StatusOK
		if templates != "ok" || routes != "ok" {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		body := gin.H{
			"status": status,
			"components": gin.H{
				"templates": templates,
				"routes":    routes,
			},
		}
		if deps.Cache != nil {
			body["cache"] = deps.Cache.Stats()
		}
		if deps.Limiter != nil {
			body["rate_limit"] = gin.H{"clients": deps.Limiter.Len()}
		}
		c.JSON(code, body)
	}
}

// noRouteHandler renders a 404 page for browsers or a JSON envelope for API
// clients.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.AbortWithAppError(c, domain.ErrNotFound)
	}
}

func registerStaticRoutes(r *gin.Engine, mode string) error {
	if mode == gin.DebugMode {
		debugStaticFS, err := resolveDebugStaticFS()
		if err != nil {
			return fmt.Errorf("resolve debug static filesystem: %w", err)
		}
		fileServer := http.StripPrefix("/static", http.FileServer(http.FS(debugStaticFS)))
		r.GET("/static/*filepath", func(c *gin.Context) {
			fileServer.ServeHTTP(c.Writer, c.Request)
		})
		return nil
	}

	staticFS, err := fs.Sub(web.EmbeddedFS, "static")
	if err != nil {
		return fmt.Errorf("create sub filesystem for static assets: %w", err)
	}
	r.GET("/static/*filepath", cacheStaticHandler(http.FS(staticFS)))
	return nil
}

func resolveDebugStaticFS() (fs.FS, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("resolve current file path")
	}

	projectRoot := filepath.Clean(filepath.Join(filepath.Dir(currentFile), "..", ".."))
	staticDir := filepath.Join(projectRoot, "web", "static")
	if _, err := os.Stat(staticDir); err != nil {
		return nil, fmt.Errorf("stat static directory %q: %w", staticDir, err)
	}

	return os.DirFS(staticDir), nil
}

// cacheStaticHandler serves release mode assets with a one day Cache-Control.
func cacheStaticHandler(fsys http.FileSystem) gin.HandlerFunc {
	fileServer := http.StripPrefix("/static", http.FileServer(fsys))
	return func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=86400")
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
