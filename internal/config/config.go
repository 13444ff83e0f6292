// Package config layers CLI configuration: defaults, then a TOML file, then
// PUEONAV_* environment variables, then explicitly set flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pueo/pueonav/internal/blind"
	"github.com/pueo/pueonav/internal/version"
	"github.com/pueo/pueonav/pkg/dataset"
	"github.com/pueo/pueonav/pkg/log"
)

// Config holds CLI configuration for pueonav.
type Config struct {
	DataRoot string
	CalibDir string

	// Version is the data directory selector: -1 default, 0 simulated,
	// otherwise an epoch.
	Version int

	Decimated bool
	Blinding  string

	Playlist string
	Bookmark string

	MetricsAddr string
	Quiet       bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Version: version.Unknown,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Version < version.Unknown {
		return fmt.Errorf("version must be -1, 0 or a positive epoch, got %d", c.Version)
	}
	if _, err := blind.ParseStrategy(c.Blinding); err != nil {
		return fmt.Errorf("blinding: %w", err)
	}
	c.Blinding = strings.TrimSpace(c.Blinding)
	if c.Bookmark != "" && c.Playlist == "" {
		return fmt.Errorf("bookmark requires a playlist")
	}
	return nil
}

// Strategy parses the blinding list.
func (c Config) Strategy() blind.Strategy {
	s, _ := blind.ParseStrategy(c.Blinding)
	return s
}

// DatasetOptions maps the configuration onto dataset.Options.
func (c Config) DatasetOptions(logger log.Logger) dataset.Options {
	opts := dataset.Options{
		DataRoot:  c.DataRoot,
		CalibDir:  c.CalibDir,
		Decimated: c.Decimated,
		Blinding:  c.Strategy(),
		Logger:    logger,
	}
	switch {
	case c.Version == version.Simulated:
		opts.Simulated = true
	case c.Version > 0:
		opts.Version = c.Version
	}
	return opts
}

// Level is the zerolog level implied by Quiet.
func (c Config) Level() zerolog.Level {
	if c.Quiet {
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// configSetter applies values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int from a pointer so that 0 (simulated) can be configured.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// ApplyEnvConfig applies PUEONAV_* environment variables.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("data-root", os.Getenv("PUEONAV_DATA_ROOT"), &cfg.DataRoot)
	s.setString("calib-dir", os.Getenv("PUEONAV_CALIB_DIR"), &cfg.CalibDir)
	s.setString("blinding", os.Getenv("PUEONAV_BLINDING"), &cfg.Blinding)
	s.setString("playlist", os.Getenv("PUEONAV_PLAYLIST"), &cfg.Playlist)
	s.setString("bookmark", os.Getenv("PUEONAV_BOOKMARK"), &cfg.Bookmark)
	s.setString("metrics-addr", os.Getenv("PUEONAV_METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setIntFromString("data-version", os.Getenv("PUEONAV_VERSION"), &cfg.Version); err != nil {
		return err
	}

	s.setBoolFromString("decimated", os.Getenv("PUEONAV_DECIMATED"), &cfg.Decimated)
	s.setBoolFromString("quiet", os.Getenv("PUEONAV_QUIET"), &cfg.Quiet)
	return nil
}
