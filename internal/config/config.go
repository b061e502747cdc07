// ABOUTME: Configuration loading and parsing for itemdesk
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Path and Load.
const (
	EnvConfigPath = "ITEMDESK_CONFIG"
	EnvServerURL  = "ITEMDESK_SERVER"
)

// Credential backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultBaseURL is where the catalog service listens in development.
const DefaultBaseURL = "http://localhost:8000"

// Config represents the complete itemdesk configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Credentials CredentialsConfig `yaml:"credentials" toml:"credentials"`
	Session     SessionConfig     `yaml:"session" toml:"session"`
	Logging     LoggingConfig     `yaml:"logging" toml:"logging"`
}

// ServerConfig holds the catalog service location
type ServerConfig struct {
	BaseURL string        `yaml:"base_url" toml:"base_url"`
	Timeout time.Duration `yaml:"-" toml:"-"`

	// Raw string value for unmarshaling
	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// CredentialsConfig selects where the access token is kept between runs
type CredentialsConfig struct {
	Backend string `yaml:"backend" toml:"backend"`
	// Path is the file or database location. Empty means the per-user default.
	Path string `yaml:"path" toml:"path"`
}

// SessionConfig holds auth view timing
type SessionConfig struct {
	RedirectDelay    time.Duration `yaml:"-" toml:"-"`
	RedirectDelayRaw string        `yaml:"redirect_delay" toml:"redirect_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:    DefaultBaseURL,
			Timeout:    10 * time.Second,
			TimeoutRaw: "10s",
		},
		Credentials: CredentialsConfig{Backend: BackendFile},
		Session: SessionConfig{
			RedirectDelay:    500 * time.Millisecond,
			RedirectDelayRaw: "500ms",
		},
		Logging: LoggingConfig{Level: "warn", Format: "text"},
	}
}

// Path returns the config file location: $ITEMDESK_CONFIG, then
// $XDG_CONFIG_HOME/itemdesk/config.yaml, then ~/.config/itemdesk/config.yaml.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "itemdesk", "config.yaml")
}

// Load reads a configuration file from the given path and returns a parsed Config.
// A missing file yields the defaults. Files ending in .toml are decoded as
// TOML, anything else as YAML. Environment variables in the format ${VAR_NAME}
// are expanded, and $ITEMDESK_SERVER overrides server.base_url.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := decode(path, expandEnvVars(string(data)), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if server := os.Getenv(EnvServerURL); server != "" {
		cfg.Server.BaseURL = server
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func decode(path, content string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(content, cfg)
		return err
	}
	return yaml.Unmarshal([]byte(content), cfg)
}

// envVarRef matches ${VAR_NAME}.
var envVarRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarRef.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarRef.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("server.base_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url must be http or https, got %q", c.Server.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("server.base_url has no host: %q", c.Server.BaseURL)
	}

	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}

	switch c.Credentials.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("credentials.backend must be one of file, sqlite, memory; got %q", c.Credentials.Backend)
	}

	if c.Session.RedirectDelay < 0 {
		return fmt.Errorf("session.redirect_delay must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Server.TimeoutRaw != "" {
		cfg.Server.Timeout, err = time.ParseDuration(cfg.Server.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing timeout %q: %w", cfg.Server.TimeoutRaw, err)
		}
	}

	if cfg.Session.RedirectDelayRaw != "" {
		cfg.Session.RedirectDelay, err = time.ParseDuration(cfg.Session.RedirectDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing redirect_delay %q: %w", cfg.Session.RedirectDelayRaw, err)
		}
	}

	return nil
}
