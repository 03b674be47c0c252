// Package config provides configuration management for the moviestitch client.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// Default values
	DefaultPort         = 8797
	DefaultLogLevel     = "info"
	DefaultDataDir      = ".moviestitch"
	DefaultAPIBaseURL   = "https://api.moviestitch.com/api"
	DefaultMediaBaseURL = "https://ms-videos-destination920a3c57-oew53evf0tuj.s3.us-west-1.amazonaws.com/"
	DefaultHTTPTimeout  = 60 * time.Second

	// Environment variable names
	EnvPort         = "MOVIESTITCH_PORT"
	EnvLogLevel     = "MOVIESTITCH_LOG_LEVEL"
	EnvDataDir      = "MOVIESTITCH_DATA_DIR"
	EnvAPIBaseURL   = "MOVIESTITCH_API_URL"
	EnvMediaBaseURL = "MOVIESTITCH_MEDIA_URL"
	EnvHTTPTimeout  = "MOVIESTITCH_HTTP_TIMEOUT"
	EnvHeadless     = "MOVIESTITCH_HEADLESS"
	EnvOTLPEndpoint = "MOVIESTITCH_OTLP_ENDPOINT"
	EnvPlaceholders = "MOVIESTITCH_PLACEHOLDERS"

	// Database filename
	DBFilename = "moviestitch.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	APIBaseURL() string
	MediaBaseURL() string
	HTTPTimeout() time.Duration
	Headless() bool
	OTLPEndpoint() string
	PlaceholderOverrides() map[string]string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port         int
	logLevel     string
	dataDir      string
	apiBaseURL   string
	mediaBaseURL string
	httpTimeout  time.Duration
	headless     bool
	otlpEndpoint string
	placeholders map[string]string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:         DefaultPort,
		logLevel:     DefaultLogLevel,
		dataDir:      defaultDataDir(),
		apiBaseURL:   DefaultAPIBaseURL,
		mediaBaseURL: DefaultMediaBaseURL,
		httpTimeout:  DefaultHTTPTimeout,
		placeholders: map[string]string{},
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if u := os.Getenv(EnvAPIBaseURL); u != "" {
		if err := validateURL(u); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvAPIBaseURL, err)
		}
		cfg.apiBaseURL = strings.TrimRight(u, "/")
	}

	if u := os.Getenv(EnvMediaBaseURL); u != "" {
		if err := validateURL(u); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvMediaBaseURL, err)
		}
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		cfg.mediaBaseURL = u
	}

	if t := os.Getenv(EnvHTTPTimeout); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHTTPTimeout, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("invalid %s: timeout must be positive", EnvHTTPTimeout)
		}
		cfg.httpTimeout = d
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	cfg.otlpEndpoint = os.Getenv(EnvOTLPEndpoint)

	if ph := os.Getenv(EnvPlaceholders); ph != "" {
		overrides, err := parsePlaceholders(ph)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPlaceholders, err)
		}
		cfg.placeholders = overrides
	}

	return cfg, nil
}

// Port returns the control API port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// APIBaseURL returns the remote moviestitch API root, without a trailing slash
func (c *EnvConfig) APIBaseURL() string {
	return c.apiBaseURL
}

// MediaBaseURL returns the storage root that relative file keys are joined to
func (c *EnvConfig) MediaBaseURL() string {
	return c.mediaBaseURL
}

func (c *EnvConfig) HTTPTimeout() time.Duration {
	return c.httpTimeout
}

func (c *EnvConfig) Headless() bool {
	return c.headless
}

// OTLPEndpoint returns the trace collector address; empty disables export
func (c *EnvConfig) OTLPEndpoint() string {
	return c.otlpEndpoint
}

// PlaceholderOverrides returns media kind -> placeholder URL overrides
func (c *EnvConfig) PlaceholderOverrides() map[string]string {
	out := make(map[string]string, len(c.placeholders))
	for k, v := range c.placeholders {
		out[k] = v
	}
	return out
}

// parsePlaceholders reads "kind=url,kind=url".
func parsePlaceholders(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kind, u, ok := strings.Cut(pair, "=")
		kind = strings.TrimSpace(kind)
		u = strings.TrimSpace(u)
		if !ok || kind == "" || u == "" {
			return nil, fmt.Errorf("malformed entry %q", pair)
		}
		if err := validateURL(u); err != nil {
			return nil, fmt.Errorf("entry %q: %w", kind, err)
		}
		out[kind] = u
	}
	return out, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
