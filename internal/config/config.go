// Package config loads goform's command configuration.
//
// Configuration is loaded from a single file specified by:
//   - GOFORM_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There is no automatic discovery. Without either, Default() applies.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "GOFORM_CONFIG"

// Config is the configuration of the goform command.
type Config struct {
	// Server configures `goform serve`.
	Server ServerConfig `yaml:"server"`

	// Language selects the built-in message dictionary ("en" or "ja").
	Language string `yaml:"language"`

	// Log configures the slog handler.
	Log LogConfig `yaml:"log"`
}

// ServerConfig configures the HTTP session server.
type ServerConfig struct {
	// Listen is the TCP address to bind.
	// Default: 127.0.0.1:8765
	Listen string `yaml:"listen"`

	// SessionIdleTimeout drops sessions not touched for this long.
	// Zero keeps sessions until the process exits.
	// Default: 30m
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is "text" or "json".
	// Default: text
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:             "127.0.0.1:8765",
			SessionIdleTimeout: 30 * time.Minute,
		},
		Language: "en",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads the file named by path, or by GOFORM_CONFIG when path is
// empty. With neither set it returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. Values missing
// from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Listen == "" {
		errs = append(errs, errors.New("server.listen must not be empty"))
	}
	if c.Server.SessionIdleTimeout < 0 {
		errs = append(errs, errors.New("server.session_idle_timeout must not be negative"))
	}
	switch c.Language {
	case "en", "ja":
	default:
		errs = append(errs, fmt.Errorf("language %q is not supported (en, ja)", c.Language))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q: %w", l.Level, err)
	}
	return lv, nil
}

// Logger builds a stderr slog.Logger from the configuration.
func (l LogConfig) Logger() *slog.Logger {
	lv, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: lv}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
