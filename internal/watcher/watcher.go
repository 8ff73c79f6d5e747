// Package watcher reloads the configuration file when it changes on disk.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Service watches a single file and calls onChange after writes settle.
type Service struct {
	path     string
	onChange func(ctx context.Context) error
	debounce time.Duration
	logger   *slog.Logger
}

// NewService creates a watcher for path.
func NewService(path string, onChange func(ctx context.Context) error, logger *slog.Logger) *Service {
	return &Service{
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: 500 * time.Millisecond,
		logger:   logger.With("component", "config-watcher"),
	}
}

// SetDebounce overrides the default debounce interval (for testing).
func (s *Service) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Start blocks until ctx is canceled. The parent directory is watched
// rather than the file so editors that replace the file by rename are
// still seen.
func (s *Service) Start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close() //nolint:errcheck

	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return err
	}
	s.logger.Info("watching config file", "path", s.path)

	// Starts stopped; reset on each relevant event.
	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("config watcher stopping")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !s.relevant(ev) {
				continue
			}
			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(s.debounce)
			pending = true

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("fsnotify error", "error", err)

		case <-debounceTimer.C:
			if !pending {
				continue
			}
			pending = false
			if err := s.onChange(ctx); err != nil {
				s.logger.Error("reloading config failed, keeping previous settings", "error", err)
				continue
			}
			s.logger.Info("config reloaded", "path", s.path)
		}
	}
}

func (s *Service) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != s.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
