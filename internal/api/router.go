package api

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sydlexius/spotilytics/internal/api/middleware"
	"github.com/sydlexius/spotilytics/internal/cache"
	"github.com/sydlexius/spotilytics/internal/image"
	"github.com/sydlexius/spotilytics/internal/session"
	"github.com/sydlexius/spotilytics/internal/view"
)

// CacheStats reports the process cache counters for the health endpoint.
type CacheStats interface {
	Stats() cache.Stats
}

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Store      *session.Store
	Controller *session.Controller
	Builder    *view.Builder
	Thumbnails *image.Thumbnails
	Cache      CacheStats
	Logger     *slog.Logger
	BasePath   string
	Static     fs.FS
	// ChartJSURL is the Chart.js script; its origin is allowed by the CSP.
	ChartJSURL    string
	SecureCookies bool
	// ActionsPerSecond and ActionBurst bound navigation actions per client IP.
	ActionsPerSecond float64
	ActionBurst      int
}

// Router sets up all HTTP routes for the application.
type Router struct {
	store            *session.Store
	controller       *session.Controller
	builder          *view.Builder
	thumbnails       *image.Thumbnails
	cache            CacheStats
	logger           *slog.Logger
	basePath         string
	staticAssets     *StaticAssets
	chartJSURL       string
	secureCookies    bool
	csrf             *middleware.CSRF
	actionsPerSecond float64
	actionBurst      int
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		store:            deps.Store,
		controller:       deps.Controller,
		builder:          deps.Builder,
		thumbnails:       deps.Thumbnails,
		cache:            deps.Cache,
		logger:           deps.Logger.With(slog.String("component", "api")),
		basePath:         deps.BasePath,
		staticAssets:     NewStaticAssets(deps.Static, deps.BasePath, deps.Logger),
		chartJSURL:       deps.ChartJSURL,
		secureCookies:    deps.SecureCookies,
		csrf:             middleware.NewCSRF(deps.SecureCookies),
		actionsPerSecond: deps.ActionsPerSecond,
		actionBurst:      deps.ActionBurst,
	}
}

// formActions maps the HTML form endpoints to navigation actions.
var formActions = map[string]session.Action{
	"/search":         session.ActionSearch,
	"/pick":           session.ActionPick,
	"/back":           session.ActionBack,
	"/compare":        session.ActionCompare,
	"/compare/cancel": session.ActionCancelCompare,
	"/compare/exit":   session.ActionExitCompare,
}

// Handler returns the fully configured HTTP handler with middleware applied.
// Background cleanup for the rate limiter and CSRF tokens stops with ctx.
func (r *Router) Handler(ctx context.Context) http.Handler {
	limiter := middleware.NewRateLimiter(ctx, r.actionsPerSecond, r.actionBurst)
	go r.sweepCSRF(ctx, time.Hour)

	mux := http.NewServeMux()
	bp := r.basePath

	mux.HandleFunc("GET "+bp+"/api/v1/health", r.handleHealth)
	mux.HandleFunc("GET "+bp+"/api/v1/view", r.handleAPIView)
	mux.Handle("POST "+bp+"/api/v1/actions", limiter.Middleware(http.HandlerFunc(r.handleAPIAction)))
	mux.HandleFunc("GET "+bp+"/img/square", r.handleSquareImage)
	mux.Handle("GET "+bp+"/static/", r.staticAssets.Handler())
	mux.HandleFunc("GET "+bp+"/{$}", r.handleIndex)

	for path, action := range formActions {
		mux.Handle("POST "+bp+path, limiter.Middleware(r.handleFormAction(action)))
	}

	var h http.Handler = mux
	h = r.csrf.Middleware(h)
	h = middleware.SecurityHeaders(scriptOrigin(r.chartJSURL))(h)
	return middleware.Logging(r.logger)(h)
}

func (r *Router) sweepCSRF(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.csrf.Sweep(); n > 0 {
				r.logger.Debug("expired csrf tokens removed", slog.Int("count", n))
			}
		}
	}
}

// scriptOrigin returns the scheme and host of an absolute script URL, or ""
// for same-origin paths.
func scriptOrigin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
