package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/pageshell/internal/config"
	"github.com/simp-lee/pageshell/internal/middleware"
	"github.com/simp-lee/pageshell/internal/module/page"
	"github.com/simp-lee/pageshell/internal/pkg/metrics"
	"github.com/simp-lee/pageshell/internal/pkg/pagecache"
	"github.com/simp-lee/pageshell/internal/pkg/ratelimit"
	"github.com/simp-lee/pageshell/internal/route"
	"github.com/simp-lee/pageshell/web"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine  *gin.Engine
	logger  *logger.Logger
	cfg     *config.Config
	cache   *pagecache.Cache
	limiter *ratelimit.Limiter
	stop    context.CancelFunc // stops background cache cleanup
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, template rendering, the route table, optional metrics,
// page caching and rate limiting, middleware and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false
	a := &App{cfg: cfg}
	defer func() {
		if !success {
			a.close()
		}
	}()

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	a.logger = log

	gin.SetMode(cfg.Server.Mode)
	debug := cfg.Server.Mode == gin.DebugMode

	// 2. Template renderer. Debug mode reads web/ from disk for hot reload.
	var fsys fs.FS = web.EmbeddedFS
	if debug {
		fsys, err = resolveDebugWebFS()
		if err != nil {
			return nil, fmt.Errorf("resolve debug template fs: %w", err)
		}
	}
	renderer, err := NewTemplateRenderer(fsys, debug)
	if err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}
	if err := renderer.Check(requiredTemplates()...); err != nil {
		return nil, fmt.Errorf("check templates: %w", err)
	}

	// 3. Route table.
	table := route.Default()
	resolver, err := route.NewResolver(table)
	if err != nil {
		return nil, fmt.Errorf("setup resolver: %w", err)
	}

	// 4. Optional metrics.
	var collector *metrics.Collector
	if cfg.Server.Metrics.Enabled {
		collector = metrics.New()
		collector.SetRoutes(table.Len())
	}

	// 5. Optional page cache. Skipped in debug mode so template edits show up.
	options := []page.ServiceOption{page.WithMetrics(collector), page.WithLogger(log.Logger)}
	if cfg.Server.Cache.Enabled && !debug {
		ctx, stop := context.WithCancel(context.Background())
		a.stop = stop
		a.cache, err = pagecache.New(ctx, pagecache.Config{
			TTL:       config.Duration(cfg.Server.Cache.TTL),
			MaxSizeMB: cfg.Server.Cache.MaxSizeMB,
		})
		if err != nil {
			return nil, fmt.Errorf("setup page cache: %w", err)
		}
		options = append(options, page.WithCache(a.cache))
	}

	// 6. Manual dependency injection: resolver → service → handlers → module.
	svc, err := page.NewService(resolver, renderer, page.Options{
		AppName:      cfg.App.Name,
		Stylesheet:   cfg.App.Stylesheet,
		ClientBundle: cfg.App.ClientBundle,
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("setup page service: %w", err)
	}
	pageModule := page.NewModule(page.NewRouteHandler(resolver), page.NewPageHandler(svc, log.Logger))

	// 7. Create Gin engine with custom middleware (not gin.Default()).
	engine := gin.New()
	engine.HTMLRender = renderer
	// Paths with duplicate or trailing slashes redirect to their cleaned
	// form, matching how the resolve API canonicalizes them.
	engine.RedirectFixedPath = true

	quiet := []string{"/health"}
	if collector != nil {
		quiet = append(quiet, cfg.Server.Metrics.Path)
	}
	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestID(middleware.RequestIDConfig{TrustUpstream: cfg.Server.TrustRequestID}),
		middleware.Logger(log.Logger, quiet...),
		middleware.Metrics(collector),
	)

	rl := cfg.Server.RateLimit
	if rl.Enabled {
		a.limiter, err = ratelimit.New(rl.RPS, rl.Burst, config.Duration(rl.StaleAfter))
		if err != nil {
			return nil, fmt.Errorf("setup rate limiter: %w", err)
		}
		engine.Use(middleware.RateLimit(a.limiter, collector, log.Logger, quiet...))
	}

	// 8. Register all routes.
	metricsPath := ""
	if collector != nil {
		metricsPath = cfg.Server.Metrics.Path
	}
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:     []Module{pageModule},
		Renderer:    renderer,
		Table:       table,
		Mode:        cfg.Server.Mode,
		Metrics:     collector,
		MetricsPath: metricsPath,
		Cache:       a.cache,
		Limiter:     a.limiter,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	log.Info("application ready",
		slog.String("mode", cfg.Server.Mode),
		slog.Int("routes", table.Len()),
		slog.Bool("cache", a.cache != nil),
		slog.Bool("rate_limit", a.limiter != nil),
		slog.Bool("metrics", collector != nil),
	)

	a.engine = engine
	success = true
	return a, nil
}

// Handler returns the configured HTTP handler.
func (a *App) Handler() http.Handler {
	return a.engine
}

func resolveDebugWebFS() (fs.FS, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		webDir := filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "web"))
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	exePath, err := os.Executable()
	if err == nil {
		webDir := filepath.Join(filepath.Dir(exePath), "web")
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	return nil, errors.New("debug web directory not found")
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// Shutdown waits at most server.shutdown_timeout for in-flight requests, then
// releases the page cache, the rate limiter and the logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := a.cfg.Addr()
	srv := newHTTPServer(addr, a.engine)
	log := a.log()

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		timeout := config.Duration(a.cfg.Server.ShutdownTimeout)
		if timeout <= 0 {
			timeout = config.Duration(config.DefaultShutdownTimeout)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	log.Info("server stopped")
	a.close()
	return runErr
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}

// close releases background resources. It is safe to call more than once.
func (a *App) close() {
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log().Error("page cache close error", slog.Any("error", err))
		}
		a.cache = nil
	}
	if a.stop != nil {
		a.stop()
	}
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
		a.logger = nil
	}
}
