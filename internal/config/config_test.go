package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	setCredentials(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Server.BasePath != "" {
		t.Errorf("BasePath = %q, want empty after trimming", cfg.Server.BasePath)
	}
	if cfg.Cache.SearchTTL != time.Hour || cfg.Cache.DiscographyTTL != 24*time.Hour {
		t.Errorf("cache TTLs = %+v", cfg.Cache)
	}
	if cfg.Session.IdleTimeout != 2*time.Hour {
		t.Errorf("IdleTimeout = %v", cfg.Session.IdleTimeout)
	}
	if cfg.Spotify.Market != "US" {
		t.Errorf("Market = %q", cfg.Spotify.Market)
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")
	t.Setenv("spotipyId", "")
	t.Setenv("spotipySecret", "")

	if _, err := Load(""); !errors.Is(err, ErrMissingClientID) {
		t.Errorf("error = %v, want ErrMissingClientID", err)
	}

	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	if _, err := Load(""); !errors.Is(err, ErrMissingClientSecret) {
		t.Errorf("error = %v, want ErrMissingClientSecret", err)
	}
}

func TestLoad_LegacyCredentialNames(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")
	t.Setenv("spotipyId", "legacy-id")
	t.Setenv("spotipySecret", "legacy-secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Spotify.ClientID != "legacy-id" || cfg.Spotify.ClientSecret != "legacy-secret" {
		t.Errorf("credentials = %q / %q", cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	setCredentials(t)
	path := writeFile(t, `
server:
  port: 9000
  base_path: /spotilytics/
cache:
  search_ttl: 30m
logging:
  level: debug
  format: text
`)
	t.Setenv("SPOTILYTICS_PORT", "9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Port = %d, want env override 9100", cfg.Server.Port)
	}
	if cfg.Server.BasePath != "/spotilytics" {
		t.Errorf("BasePath = %q", cfg.Server.BasePath)
	}
	if cfg.Cache.SearchTTL != 30*time.Minute {
		t.Errorf("SearchTTL = %v", cfg.Cache.SearchTTL)
	}
	if cfg.Cache.DiscographyTTL != 24*time.Hour {
		t.Errorf("DiscographyTTL = %v, want default", cfg.Cache.DiscographyTTL)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	setCredentials(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{"bad port env", map[string]string{"SPOTILYTICS_PORT": "http"}, ""},
		{"port out of range", map[string]string{"SPOTILYTICS_PORT": "70000"}, ""},
		{"cert without key", map[string]string{"SPOTILYTICS_TLS_CERT": "/tmp/cert.pem"}, ""},
		{"http3 without tls", map[string]string{"SPOTILYTICS_HTTP3": "true"}, ""},
		{"bad http3 flag", map[string]string{"SPOTILYTICS_HTTP3": "maybe"}, ""},
		{"bad log level", map[string]string{"SPOTILYTICS_LOG_LEVEL": "loud"}, ""},
		{"bad yaml", nil, "server: [oops"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setCredentials(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestServerConfig_TLSEnabled(t *testing.T) {
	if (ServerConfig{}).TLSEnabled() {
		t.Error("empty config reports TLS")
	}
	if !(ServerConfig{TLSCert: "c", TLSKey: "k"}).TLSEnabled() {
		t.Error("cert and key should enable TLS")
	}
}
