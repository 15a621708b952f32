// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when no --config flag is
// given.
const EnvironmentVariable = "ANVIL_CONFIG"

// Config is the configuration for the overlay host and tools.
type Config struct {
	// RuntimeDir holds the Unix domain sockets for every channel.
	// Unused on Windows, where channels are named pipes.
	RuntimeDir string `yaml:"runtime_dir"`

	// LogLevel is one of debug, info, warn, error. ANVIL_DEBUG=1 in
	// the environment forces debug regardless.
	LogLevel string `yaml:"log_level"`

	// StatusSocket is the path of the CBOR status socket served by the
	// host. Empty disables it.
	StatusSocket string `yaml:"status_socket"`

	// Framebuffer configures the frame relay.
	Framebuffer FramebufferConfig `yaml:"framebuffer"`

	// Indicator configures the status indicator.
	Indicator IndicatorConfig `yaml:"indicator"`

	// Input configures input interception.
	Input InputConfig `yaml:"input"`
}

// FramebufferConfig configures the frame relay.
type FramebufferConfig struct {
	// MinSizeHint is the expected frame size, in bytes, at or below
	// which the channel is opened without a size hint.
	MinSizeHint int `yaml:"min_size_hint"`

	// RestartBackoff is the minimum interval between relay restarts
	// after the renderer disconnects (Go duration syntax).
	RestartBackoff string `yaml:"restart_backoff"`

	// Compression is the frame compression the browser simulator
	// uses: none, lz4, or zstd. Readers accept all three.
	Compression string `yaml:"compression"`
}

// IndicatorConfig configures the status indicator.
type IndicatorConfig struct {
	// TransientDuration is how long a transient indicator event
	// (bookmark, clip processed, stream started/stopped) is shown
	// before the renderer reverts to the continuous event.
	TransientDuration string `yaml:"transient_duration"`
}

// InputConfig configures input interception.
type InputConfig struct {
	// Hooks installs the global keyboard/mouse hook. Hosts that feed
	// input from their own window procedure leave it off.
	Hooks bool `yaml:"hooks"`
}

// Default returns the built-in configuration, with variables already
// expanded.
func Default() *Config {
	config := defaults()
	config.expandVariables()
	return config
}

func defaults() *Config {
	return &Config{
		RuntimeDir:   "${XDG_RUNTIME_DIR:-/tmp}/anvil",
		LogLevel:     "info",
		StatusSocket: "${ANVIL_RUNTIME_DIR}/status.sock",
		Framebuffer: FramebufferConfig{
			MinSizeHint:    1024,
			RestartBackoff: "1s",
			Compression:    "lz4",
		},
		Indicator: IndicatorConfig{
			TransientDuration: "3s",
		},
		Input: InputConfig{
			Hooks: false,
		},
	}
}

// Load loads the file named by ANVIL_CONFIG, or returns Default when
// the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path over the defaults. Fields the
// file omits keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration over the defaults.
func Parse(data []byte) (*Config, error) {
	config := defaults()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	config.expandVariables()
	return config, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields.
func (c *Config) expandVariables() {
	vars := map[string]string{}
	c.RuntimeDir = expandVars(c.RuntimeDir, vars)
	vars["ANVIL_RUNTIME_DIR"] = c.RuntimeDir
	c.StatusSocket = expandVars(c.StatusSocket, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}, looking in vars
// before the environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.RuntimeDir == "" {
		errs = append(errs, errors.New("runtime_dir is required"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Framebuffer.MinSizeHint < 0 {
		errs = append(errs, fmt.Errorf("framebuffer.min_size_hint must not be negative, got %d", c.Framebuffer.MinSizeHint))
	}
	if _, err := c.RestartBackoff(); err != nil {
		errs = append(errs, err)
	}
	switch c.Framebuffer.Compression {
	case "none", "lz4", "zstd":
	default:
		errs = append(errs, fmt.Errorf("framebuffer.compression must be one of none, lz4, zstd, got %q", c.Framebuffer.Compression))
	}
	if _, err := c.TransientDuration(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// RestartBackoff parses framebuffer.restart_backoff.
func (c *Config) RestartBackoff() (time.Duration, error) {
	return parsePositiveDuration("framebuffer.restart_backoff", c.Framebuffer.RestartBackoff)
}

// TransientDuration parses indicator.transient_duration.
func (c *Config) TransientDuration() (time.Duration, error) {
	return parsePositiveDuration("indicator.transient_duration", c.Indicator.TransientDuration)
}

func parsePositiveDuration(field, value string) (time.Duration, error) {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", field, value)
	}
	return duration, nil
}

// Level returns the configured log level, forced to debug when
// ANVIL_DEBUG is set to a non-empty value other than 0.
func (c *Config) Level() slog.Level {
	if debug := os.Getenv("ANVIL_DEBUG"); debug != "" && debug != "0" {
		return slog.LevelDebug
	}
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel parses a log level name.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", name)
	}
}
