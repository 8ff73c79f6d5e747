package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestManager(t *testing.T, cfg Config, tty bool) (*Manager, *slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	m, logger := newManager(cfg, &buf, func() bool { return tty })
	t.Cleanup(func() { _ = m.Close() })
	return m, logger, &buf
}

func TestManager_LevelSwap(t *testing.T) {
	mgr, logger, _ := newTestManager(t, Config{Level: "info", Format: FormatJSON}, false)
	ctx := context.Background()

	if !logger.Enabled(ctx, slog.LevelInfo) || logger.Enabled(ctx, slog.LevelDebug) {
		t.Fatal("unexpected initial level")
	}

	mgr.Reconfigure(Config{Level: "debug", Format: FormatJSON})
	if !logger.Enabled(ctx, slog.LevelDebug) {
		t.Error("expected debug to be enabled after reconfigure")
	}

	mgr.Reconfigure(Config{Level: "error", Format: FormatJSON})
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Error("expected info to be disabled when level is error")
	}
}

func TestManager_AutoFormat(t *testing.T) {
	_, jsonLogger, jsonBuf := newTestManager(t, Config{Level: "info", Format: FormatAuto}, false)
	jsonLogger.Info("piped")
	if !json.Valid(bytes.TrimSpace(jsonBuf.Bytes())) {
		t.Errorf("expected JSON output when not a terminal, got %q", jsonBuf.String())
	}

	_, textLogger, textBuf := newTestManager(t, Config{Level: "info", Format: FormatAuto}, true)
	textLogger.Info("interactive")
	if !strings.Contains(textBuf.String(), "msg=interactive") {
		t.Errorf("expected text output on a terminal, got %q", textBuf.String())
	}
}

func TestManager_FormatSwapKeepsDerivedLoggers(t *testing.T) {
	mgr, logger, buf := newTestManager(t, Config{Level: "info", Format: FormatJSON}, false)
	component := logger.With(slog.String("component", "gateway"))

	mgr.Reconfigure(Config{Level: "info", Format: FormatText})
	component.Info("after swap")

	out := buf.String()
	if !strings.Contains(out, "component=gateway") || !strings.Contains(out, "msg=\"after swap\"") {
		t.Errorf("derived logger did not follow the swap: %q", out)
	}
	if mgr.Config().Format != FormatText {
		t.Errorf("Config().Format = %q", mgr.Config().Format)
	}
}

func TestManager_RedactsSecrets(t *testing.T) {
	_, logger, buf := newTestManager(t, Config{Level: "info", Format: FormatJSON}, false)
	logger.Info("auth", slog.String("client_secret", "hunter2"), slog.String("access_token", "abc"), slog.String("client_id", "visible"))

	out := buf.String()
	if strings.Contains(out, "hunter2") || strings.Contains(out, "\"abc\"") {
		t.Errorf("secret leaked: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("non-secret attribute missing: %s", out)
	}
}

func TestManager_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "spotilytics.log")
	mgr, logger, _ := newTestManager(t, Config{Level: "info", Format: FormatJSON, FilePath: logFile, FileMaxSizeMB: 1}, false)

	logger.Info("hello from test")
	if err := mgr.Close(); err != nil {
		t.Fatalf("closing manager: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !bytes.Contains(data, []byte("hello from test")) {
		t.Errorf("log file missing record: %q", data)
	}
}

func TestManager_CloseIdempotent(t *testing.T) {
	mgr, _ := NewManager(DefaultConfig())
	if err := mgr.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestValidLevelAndFormat(t *testing.T) {
	for _, l := range []string{"debug", "info", "warn", "error"} {
		if !ValidLevel(l) {
			t.Errorf("expected %q to be valid", l)
		}
	}
	for _, l := range []string{"", "trace", "DEBUG"} {
		if ValidLevel(l) {
			t.Errorf("expected %q to be invalid", l)
		}
	}
	for _, f := range []string{FormatAuto, FormatText, FormatJSON} {
		if !ValidFormat(f) {
			t.Errorf("expected format %q to be valid", f)
		}
	}
	if ValidFormat("xml") {
		t.Error("xml should be invalid")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in  string
		out slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"unknown", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.out {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.out)
		}
	}
}

func TestConfig_String(t *testing.T) {
	cfg := Config{Level: "info", Format: "json"}
	if s := cfg.String(); s != "level=info format=json" {
		t.Errorf("unexpected string: %s", s)
	}

	cfg.FilePath = "/var/log/spotilytics.log"
	cfg.FileMaxSizeMB = 50
	cfg.FileMaxFiles = 5
	cfg.FileMaxAgeDays = 7
	want := "level=info format=json file=/var/log/spotilytics.log max_size=50MB max_files=5 max_age=7d"
	if s := cfg.String(); s != want {
		t.Errorf("got %q, want %q", s, want)
	}
}
