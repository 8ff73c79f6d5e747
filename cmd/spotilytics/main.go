package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/quic-go/quic-go/http3"

	"github.com/sydlexius/spotilytics/internal/api"
	"github.com/sydlexius/spotilytics/internal/cache"
	"github.com/sydlexius/spotilytics/internal/catalog/spotify"
	"github.com/sydlexius/spotilytics/internal/config"
	"github.com/sydlexius/spotilytics/internal/gateway"
	"github.com/sydlexius/spotilytics/internal/image"
	"github.com/sydlexius/spotilytics/internal/logging"
	"github.com/sydlexius/spotilytics/internal/session"
	"github.com/sydlexius/spotilytics/internal/version"
	"github.com/sydlexius/spotilytics/internal/view"
	"github.com/sydlexius/spotilytics/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	configPath := os.Getenv("SPOTILYTICS_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logManager, logger := logging.NewManager(cfg.Logging)
	defer logManager.Close() //nolint:errcheck
	slog.SetDefault(logger)

	logger.Info("starting spotilytics",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	adapter := spotify.New(ctx, spotify.Options{
		ClientID:          cfg.Spotify.ClientID,
		ClientSecret:      cfg.Spotify.ClientSecret,
		Market:            cfg.Spotify.Market,
		RequestsPerSecond: cfg.Spotify.RequestsPerSecond,
		Timeout:           cfg.Spotify.Timeout,
	}, logger)

	processCache := cache.New()
	gw := gateway.New(adapter, processCache, gateway.TTLs{
		Search:      cfg.Cache.SearchTTL,
		Discography: cfg.Cache.DiscographyTTL,
	}, logger)

	store := session.NewStore(cfg.Session.IdleTimeout)
	go sweepSessions(ctx, store, cfg.Session.SweepInterval, logger)

	fetcher := image.NewFetcher(&http.Client{Timeout: cfg.Spotify.Timeout}, cfg.Images.AllowedHosts)

	router := api.NewRouter(api.RouterDeps{
		Store:            store,
		Controller:       session.NewController(gw, logger),
		Builder:          view.NewBuilder(gw, cfg.Server.BasePath, logger),
		Thumbnails:       image.NewThumbnails(fetcher, processCache, logger),
		Cache:            processCache,
		Logger:           logger,
		BasePath:         cfg.Server.BasePath,
		Static:           os.DirFS("web/static"),
		ChartJSURL:       cfg.Server.ChartJSURL,
		SecureCookies:    cfg.Session.SecureCookie || cfg.Server.TLSEnabled(),
		ActionsPerSecond: cfg.Server.ActionsPerSecond,
		ActionBurst:      cfg.Server.ActionBurst,
	})
	handler := router.Handler(ctx)

	// Logging settings follow config file edits without a restart.
	reload := func(context.Context) error {
		next, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logManager.Reconfigure(next.Logging)
		logger.Info("logging reconfigured", slog.String("logging", next.Logging.String()))
		return nil
	}
	go func() {
		if err := watcher.NewService(configPath, reload, logger).Start(ctx); err != nil {
			logger.Warn("config watcher stopped", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	var h3 *http3.Server
	if cfg.Server.HTTP3 {
		h3 = &http3.Server{Addr: addr, Handler: handler}
		tcpHandler := handler
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := h3.SetQUICHeaders(w.Header()); err != nil {
				logger.Debug("setting Alt-Svc header", "error", err)
			}
			tcpHandler.ServeHTTP(w, r)
		})
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("base_path", cfg.Server.BasePath),
			slog.Bool("tls", cfg.Server.TLSEnabled()),
		)
		var err error
		if cfg.Server.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	if h3 != nil {
		go func() {
			logger.Info("http/3 listener starting", slog.String("addr", addr))
			if err := h3.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http/3 server: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if h3 != nil {
		if err := h3.Close(); err != nil {
			logger.Warn("closing http/3 listener", "error", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return serveErr
}

// sweepSessions drops idle sessions every interval until ctx ends.
func sweepSessions(ctx context.Context, store *session.Store, every time.Duration, logger *slog.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				logger.Debug("idle sessions expired", slog.Int("count", n), slog.Int("live", store.Len()))
			}
		}
	}
}
