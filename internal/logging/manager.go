package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log formats.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Config describes the desired logging configuration.
type Config struct {
	Level          string `yaml:"level" json:"level"`
	Format         string `yaml:"format" json:"format"`
	FilePath       string `yaml:"file" json:"file_path,omitempty"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb" json:"file_max_size_mb,omitempty"`
	FileMaxFiles   int    `yaml:"file_max_files" json:"file_max_files,omitempty"`
	FileMaxAgeDays int    `yaml:"file_max_age_days" json:"file_max_age_days,omitempty"`
}

// DefaultConfig logs at info level to stdout, picking the format from the
// terminal.
func DefaultConfig() Config {
	return Config{
		Level:          "info",
		Format:         FormatAuto,
		FileMaxSizeMB:  100,
		FileMaxFiles:   3,
		FileMaxAgeDays: 30,
	}
}

// String returns a human-readable summary of the config.
func (c Config) String() string {
	s := fmt.Sprintf("level=%s format=%s", c.Level, c.Format)
	if c.FilePath != "" {
		s += fmt.Sprintf(" file=%s max_size=%dMB max_files=%d max_age=%dd",
			c.FilePath, c.FileMaxSizeMB, c.FileMaxFiles, c.FileMaxAgeDays)
	}
	return s
}

// Manager owns the process logger.
type Manager struct {
	mu       sync.Mutex
	level    *slog.LevelVar
	handler  *swapHandler
	config   Config
	stdout   io.Writer
	isTTY    func() bool
	rotating io.Closer
}

// NewManager creates a Manager and the logger it controls.
func NewManager(cfg Config) (*Manager, *slog.Logger) {
	return newManager(cfg, os.Stdout, func() bool { return term.IsTerminal(int(os.Stdout.Fd())) })
}

func newManager(cfg Config, stdout io.Writer, isTTY func() bool) (*Manager, *slog.Logger) {
	m := &Manager{
		level:  &slog.LevelVar{},
		config: cfg,
		stdout: stdout,
		isTTY:  isTTY,
	}
	m.level.Set(ParseLevel(cfg.Level))

	var w io.Writer
	w, m.rotating = m.writer(cfg)
	m.handler = newSwapHandler(m.build(w, cfg.Format))
	return m, slog.New(m.handler)
}

// Reconfigure applies cfg. A level change takes effect immediately; a
// format or file change rebuilds the output.
func (m *Manager) Reconfigure(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.level.Set(ParseLevel(cfg.Level))

	old := m.config
	m.config = cfg
	if cfg.Format == old.Format && cfg.FilePath == old.FilePath &&
		cfg.FileMaxSizeMB == old.FileMaxSizeMB && cfg.FileMaxFiles == old.FileMaxFiles &&
		cfg.FileMaxAgeDays == old.FileMaxAgeDays {
		return
	}

	if m.rotating != nil {
		m.rotating.Close() //nolint:errcheck
		m.rotating = nil
	}
	var w io.Writer
	w, m.rotating = m.writer(cfg)
	m.handler.swap(m.build(w, cfg.Format))
}

// Config returns the active configuration.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Close releases the log file, if any. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rotating == nil {
		return nil
	}
	err := m.rotating.Close()
	m.rotating = nil
	return err
}

// writer returns stdout, or stdout plus a rotating file when a path is set.
func (m *Manager) writer(cfg Config) (io.Writer, io.Closer) {
	if cfg.FilePath == "" {
		return m.stdout, nil
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    orDefault(cfg.FileMaxSizeMB, 100),
		MaxBackups: orDefault(cfg.FileMaxFiles, 3),
		MaxAge:     orDefault(cfg.FileMaxAgeDays, 30),
	}
	return io.MultiWriter(m.stdout, lj), lj
}

func (m *Manager) build(w io.Writer, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: m.level, ReplaceAttr: redact}
	if m.resolveFormat(format) == FormatText {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// resolveFormat turns "auto" into text on a terminal and JSON elsewhere.
func (m *Manager) resolveFormat(format string) string {
	switch format {
	case FormatText, FormatJSON:
		return format
	default:
		if m.isTTY() {
			return FormatText
		}
		return FormatJSON
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether s is a recognized log level.
func ValidLevel(s string) bool {
	switch s {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// ValidFormat reports whether s is a recognized log format.
func ValidFormat(s string) bool {
	switch s {
	case FormatAuto, FormatText, FormatJSON:
		return true
	}
	return false
}
