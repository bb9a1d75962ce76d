package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config is the effective bizgraph configuration.
type Config struct {
	DataURL string `yaml:"data_url,omitempty" json:"data_url,omitempty"` // Primary batch URL
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"` // Resolves relative batch URLs
	FullURL string `yaml:"full_url,omitempty" json:"full_url,omitempty"` // Target of the legend's full-view link

	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`

	Ticks    int     `yaml:"ticks" json:"ticks"`         // Ticks run by render
	TickRate float64 `yaml:"tick_rate" json:"tick_rate"` // Ticks per second in serve
	Seed     uint64  `yaml:"seed" json:"seed"`           // Layout random seed

	Addr         string        `yaml:"addr" json:"addr"`
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"` // 0 fetches once
	FetchRate    float64       `yaml:"fetch_rate" json:"fetch_rate"`       // Requests per second
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`

	GlyphWidth float64 `yaml:"glyph_width" json:"glyph_width"` // Label width estimate per cell
	Debug      bool    `yaml:"debug,omitempty" json:"debug,omitempty"`
}

// Default values.
const (
	DefaultWidth        = 960.0
	DefaultHeight       = 600.0
	DefaultTicks        = 300
	DefaultTickRate     = 30.0
	DefaultSeed         = 1
	DefaultAddr         = "127.0.0.1:8080"
	DefaultPollInterval = 30 * time.Second
	DefaultFetchRate    = 2.0
	DefaultFetchTimeout = 30 * time.Second
	DefaultGlyphWidth   = 7.0
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BIZGRAPH_"

// ErrInvalidConfig is returned for unparseable or out-of-range settings.
var ErrInvalidConfig = errors.New("invalid configuration")

// Default returns a Config holding the default values.
func Default() *Config {
	return &Config{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Ticks:        DefaultTicks,
		TickRate:     DefaultTickRate,
		Seed:         DefaultSeed,
		Addr:         DefaultAddr,
		PollInterval: DefaultPollInterval,
		FetchRate:    DefaultFetchRate,
		FetchTimeout: DefaultFetchTimeout,
		GlyphWidth:   DefaultGlyphWidth,
	}
}

// Validate checks that sizes and rates are usable.
func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: canvas size must be positive, got %vx%v", ErrInvalidConfig, c.Width, c.Height)
	case c.Ticks < 0:
		return fmt.Errorf("%w: ticks must not be negative, got %d", ErrInvalidConfig, c.Ticks)
	case c.TickRate <= 0:
		return fmt.Errorf("%w: tick_rate must be positive, got %v", ErrInvalidConfig, c.TickRate)
	case c.PollInterval < 0:
		return fmt.Errorf("%w: poll_interval must not be negative, got %s", ErrInvalidConfig, c.PollInterval)
	case c.FetchRate < 0:
		return fmt.Errorf("%w: fetch_rate must not be negative, got %v", ErrInvalidConfig, c.FetchRate)
	case c.FetchTimeout <= 0:
		return fmt.Errorf("%w: fetch_timeout must be positive, got %s", ErrInvalidConfig, c.FetchTimeout)
	case c.Addr == "":
		return fmt.Errorf("%w: addr must be set", ErrInvalidConfig)
	}
	return nil
}

// Keys lists every setting in file order.
var Keys = []string{
	"data_url", "base_url", "full_url",
	"width", "height",
	"ticks", "tick_rate", "seed",
	"addr", "poll_interval", "fetch_rate", "fetch_timeout",
	"glyph_width", "debug",
}

// NormalizeKey converts key formats (tick-rate, TICK_RATE) to tick_rate.
func NormalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}

// Set parses value into the setting named key.
func (c *Config) Set(key, value string) error {
	key = NormalizeKey(key)
	var err error
	switch key {
	case "data_url":
		c.DataURL = value
	case "base_url":
		c.BaseURL = value
	case "full_url":
		c.FullURL = value
	case "addr":
		c.Addr = value
	case "width":
		c.Width, err = strconv.ParseFloat(value, 64)
	case "height":
		c.Height, err = strconv.ParseFloat(value, 64)
	case "tick_rate":
		c.TickRate, err = strconv.ParseFloat(value, 64)
	case "fetch_rate":
		c.FetchRate, err = strconv.ParseFloat(value, 64)
	case "glyph_width":
		c.GlyphWidth, err = strconv.ParseFloat(value, 64)
	case "ticks":
		c.Ticks, err = strconv.Atoi(value)
	case "seed":
		c.Seed, err = strconv.ParseUint(value, 10, 64)
	case "poll_interval":
		c.PollInterval, err = time.ParseDuration(value)
	case "fetch_timeout":
		c.FetchTimeout, err = time.ParseDuration(value)
	case "debug":
		c.Debug, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
	}
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, value)
	}
	return nil
}

// applyEnv overrides settings from BIZGRAPH_* variables.
func (c *Config) applyEnv() error {
	for _, key := range Keys {
		v, ok := os.LookupEnv(EnvPrefix + strings.ToUpper(key))
		if !ok {
			continue
		}
		if err := c.Set(key, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, strings.ToUpper(key), err)
		}
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
