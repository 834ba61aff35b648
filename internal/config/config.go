package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"themeforge/internal/colorengine"
	"themeforge/internal/theme"
)

// DefaultFile is the optional JSON config read by Load.
const DefaultFile = "themeforge.json"

// Config holds all theme server configuration values.
type Config struct {
	Listen        string  `json:"listen"`
	MetricsListen string  `json:"metrics_listen"`
	DefaultColor  string  `json:"default_color"`
	Shade         float64 `json:"shade"`
	Tint          float64 `json:"tint"`
	RateLimitRPM  int     `json:"rate_limit_rpm"`
	TrustProxy    bool    `json:"trust_proxy"`

	// Per-client rate limits keyed by IP; 0 exempts a client.
	ClientLimits map[string]int `json:"client_limits"`
	CacheMaxAge   int     `json:"cache_max_age"`
	AllowedOrigin string  `json:"allowed_origin"`

	// Environment configuration (loaded from env vars)
	Env *EnvConfig `json:"-"`
}

// Default returns the built-in configuration without reading files or env.
func Default() *Config {
	return &Config{
		Listen:        ":8080",
		MetricsListen: ":9090",
		DefaultColor:  "#3366cc",
		Shade:         theme.DefaultShade,
		Tint:          theme.DefaultTint,
		RateLimitRPM:  120,
		CacheMaxAge:   300,
		AllowedOrigin: "*",
		Env:           &EnvConfig{Env: Development, LogLevel: "info"},
	}
}

// Load reads DefaultFile over defaults, then applies environment overrides.
func Load() (*Config, error) {
	return LoadFile(DefaultFile)
}

// LoadFile is Load with an explicit path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if file, err := os.Open(path); err == nil {
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	cfg.Env = LoadEnv()
	cfg.applyEnv()
	cfg.DefaultColor = strings.TrimSpace(cfg.DefaultColor)

	return cfg, nil
}

// Intensities returns the configured shade and tint.
func (c *Config) Intensities() theme.Intensities {
	return theme.Intensities{Shade: c.Shade, Tint: c.Tint}
}

// Validate checks the configuration for errors and returns helpful messages.
func (c *Config) Validate() error {
	var errs []string

	if c.Listen == "" {
		errs = append(errs, "listen address is required")
	}
	if c.MetricsListen != "" && c.MetricsListen == c.Listen {
		errs = append(errs, "metrics_listen must differ from listen")
	}

	if !colorengine.Valid(c.DefaultColor) {
		errs = append(errs, fmt.Sprintf("default_color %q is not a #rgb or #rrggbb color", c.DefaultColor))
	}

	if !(c.Shade >= -1 && c.Shade <= 0) {
		errs = append(errs, fmt.Sprintf("shade must be in [-1, 0], got %v", c.Shade))
	}
	if !(c.Tint >= 0 && c.Tint <= 1) {
		errs = append(errs, fmt.Sprintf("tint must be in [0, 1], got %v", c.Tint))
	}

	if c.RateLimitRPM < 0 {
		errs = append(errs, "rate_limit_rpm must not be negative")
	}
	for client, rpm := range c.ClientLimits {
		if rpm < 0 {
			errs = append(errs, fmt.Sprintf("client_limits[%s] must not be negative", client))
		}
	}
	if c.CacheMaxAge < 0 {
		errs = append(errs, "cache_max_age must not be negative")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// applyEnv lets THEME_* variables override file values.
func (c *Config) applyEnv() {
	c.Listen = getEnvOrDefault("THEME_LISTEN", c.Listen)
	c.MetricsListen = getEnvOrDefault("THEME_METRICS_LISTEN", c.MetricsListen)
	c.DefaultColor = getEnvOrDefault("THEME_DEFAULT_COLOR", c.DefaultColor)
	c.Shade = parseFloatOrDefault(os.Getenv("THEME_SHADE"), c.Shade)
	c.Tint = parseFloatOrDefault(os.Getenv("THEME_TINT"), c.Tint)
	c.RateLimitRPM = parseIntOrDefault(os.Getenv("THEME_RATE_LIMIT_RPM"), c.RateLimitRPM)
	c.TrustProxy = getEnvOrDefault("THEME_TRUST_PROXY", strconv.FormatBool(c.TrustProxy)) == "true"
	c.CacheMaxAge = parseIntOrDefault(os.Getenv("THEME_CACHE_MAX_AGE"), c.CacheMaxAge)
	c.AllowedOrigin = getEnvOrDefault("THEME_ALLOWED_ORIGIN", c.AllowedOrigin)
}
