// Package config loads the server configuration.
//
// Values are layered, lowest precedence first: built-in defaults, an optional
// YAML file named by HOOPSBOARD_CONFIG, HOOPSBOARD_* environment variables, and
// finally command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment names
const (
	EnvPrefix     = "HOOPSBOARD_"
	EnvConfigFile = "HOOPSBOARD_CONFIG"
)

// Sentinel errors so callers can errors.Is the failure class.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int `koanf:"port"`

	// DBPath is the SQLite database holding preferences, pins and submissions.
	DBPath string `koanf:"db_path"`

	// BaseURL is the public URL of this server, used for share links. Empty
	// means the request's host is used.
	BaseURL string `koanf:"base_url"`

	// APIBaseURL and APIToken address the contest API.
	APIBaseURL string        `koanf:"api_base_url"`
	APIToken   string        `koanf:"api_token"`
	APITimeout time.Duration `koanf:"api_timeout"`

	// DefaultSeason is where / redirects to.
	DefaultSeason string `koanf:"default_season"`

	LogLevel      string `koanf:"log_level"`
	AdminPassword string `koanf:"admin_password"`

	// PinPulseMS and FrameMS tune the page timers.
	PinPulseMS int `koanf:"pin_pulse_ms"`
	FrameMS    int `koanf:"frame_ms"`

	// PageTTL unmounts pages that saw no event for this long.
	PageTTL time.Duration `koanf:"page_ttl"`

	NoAnimate  bool `koanf:"no_animate"`
	NoKeyboard bool `koanf:"no_keyboard"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		Port:          8081,
		DBPath:        "hoopsboard.db",
		APIBaseURL:    "http://localhost:8000",
		APITimeout:    30 * time.Second,
		DefaultSeason: "2025",
		LogLevel:      "info",
		PinPulseMS:    600,
		FrameMS:       16,
		PageTTL:       30 * time.Minute,
	}
}

// PinPulse returns the pin highlight duration
func (c *Config) PinPulse() time.Duration {
	return time.Duration(c.PinPulseMS) * time.Millisecond
}

// Frame returns the window scroll throttle interval
func (c *Config) Frame() time.Duration {
	return time.Duration(c.FrameMS) * time.Millisecond
}

// Addr returns the listen address for Port
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load builds a Config by layering defaults, the optional file and env vars.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// HOOPSBOARD_PAGE_TTL -> page_ttl; underscores are kept to match the flat koanf tags
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that have no sensible fallback
func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.PinPulseMS <= 0:
		return fmt.Errorf("%w: pin_pulse_ms must be positive", ErrInvalidConfig)
	case c.FrameMS <= 0:
		return fmt.Errorf("%w: frame_ms must be positive", ErrInvalidConfig)
	case c.PageTTL <= 0:
		return fmt.Errorf("%w: page_ttl must be positive", ErrInvalidConfig)
	case c.APITimeout <= 0:
		return fmt.Errorf("%w: api_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}
