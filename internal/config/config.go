package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sydlexius/spotilytics/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Spotify SpotifyConfig  `yaml:"spotify"`
	Cache   CacheConfig    `yaml:"cache"`
	Session SessionConfig  `yaml:"session"`
	Images  ImagesConfig   `yaml:"images"`
	Logging logging.Config `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
	TLSCert  string `yaml:"tls_cert"`
	TLSKey   string `yaml:"tls_key"`
	HTTP3    bool   `yaml:"http3"`
	// ActionsPerSecond limits navigation actions per client IP.
	ActionsPerSecond float64 `yaml:"actions_per_second"`
	ActionBurst      int     `yaml:"action_burst"`
	// ChartJSURL is the script the pages load to draw charts.
	ChartJSURL string `yaml:"chartjs_url"`
}

// SpotifyConfig holds the catalog credentials and client settings.
type SpotifyConfig struct {
	ClientID          string        `yaml:"client_id"`
	ClientSecret      string        `yaml:"client_secret"`
	Market            string        `yaml:"market"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

// CacheConfig holds the lookup lifetimes.
type CacheConfig struct {
	SearchTTL      time.Duration `yaml:"search_ttl"`
	DiscographyTTL time.Duration `yaml:"discography_ttl"`
}

// SessionConfig controls browser session lifetime.
type SessionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	SecureCookie  bool          `yaml:"secure_cookie"`
}

// ImagesConfig controls the thumbnail proxy.
type ImagesConfig struct {
	AllowedHosts []string `yaml:"allowed_hosts"`
}

// Default returns a Config with sensible defaults. Credentials have none.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             8080,
			BasePath:         "/",
			ActionsPerSecond: 5,
			ActionBurst:      20,
			ChartJSURL:       "https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js",
		},
		Spotify: SpotifyConfig{
			Market:            "US",
			RequestsPerSecond: 10,
			Timeout:           10 * time.Second,
		},
		Cache: CacheConfig{
			SearchTTL:      time.Hour,
			DiscographyTTL: 24 * time.Hour,
		},
		Session: SessionConfig{
			IdleTimeout:   2 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		Images: ImagesConfig{
			AllowedHosts: []string{"i.scdn.co"},
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

// envString assigns the first non-empty variable among names to dst.
func envString(dst *string, names ...string) {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			*dst = v
			return
		}
	}
}

func (c *Config) loadFromEnv() error {
	if v := os.Getenv("SPOTILYTICS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SPOTILYTICS_PORT: %w", err)
		}
		c.Server.Port = port
	}
	envString(&c.Server.BasePath, "SPOTILYTICS_BASE_PATH")
	envString(&c.Server.TLSCert, "SPOTILYTICS_TLS_CERT")
	envString(&c.Server.TLSKey, "SPOTILYTICS_TLS_KEY")
	if v := os.Getenv("SPOTILYTICS_HTTP3"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SPOTILYTICS_HTTP3: %w", err)
		}
		c.Server.HTTP3 = on
	}

	// The spotipy variable names are still honoured for existing .env files.
	envString(&c.Spotify.ClientID, "SPOTIFY_CLIENT_ID", "spotipyId")
	envString(&c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET", "spotipySecret")
	envString(&c.Spotify.Market, "SPOTIFY_MARKET")

	envString(&c.Logging.Level, "SPOTILYTICS_LOG_LEVEL")
	envString(&c.Logging.Format, "SPOTILYTICS_LOG_FORMAT")
	envString(&c.Logging.FilePath, "SPOTILYTICS_LOG_FILE")
	return nil
}

// Validation errors for the catalog credentials.
var (
	ErrMissingClientID     = errors.New("spotify client id is required (SPOTIFY_CLIENT_ID)")
	ErrMissingClientSecret = errors.New("spotify client secret is required (SPOTIFY_CLIENT_SECRET)")
)

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Spotify.ClientID) == "" {
		return ErrMissingClientID
	}
	if strings.TrimSpace(c.Spotify.ClientSecret) == "" {
		return ErrMissingClientSecret
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return fmt.Errorf("tls_cert and tls_key must be set together")
	}
	if c.Server.HTTP3 && c.Server.TLSCert == "" {
		return fmt.Errorf("http3 requires tls_cert and tls_key")
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	if c.Spotify.RequestsPerSecond < 0 || c.Server.ActionsPerSecond < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		c.Server.BasePath = "/" + c.Server.BasePath
	}
	return nil
}

// TLSEnabled reports whether the server should listen with TLS.
func (s ServerConfig) TLSEnabled() bool {
	return s.TLSCert != "" && s.TLSKey != ""
}
