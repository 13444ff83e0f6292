package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config for TOML. Pointers distinguish unset keys.
type FileConfig struct {
	DataRoot    string `toml:"data_root"`
	CalibDir    string `toml:"calib_dir"`
	Version     *int   `toml:"version"`
	Decimated   *bool  `toml:"decimated"`
	Blinding    string `toml:"blinding"`
	Playlist    string `toml:"playlist"`
	Bookmark    string `toml:"bookmark"`
	MetricsAddr string `toml:"metrics_addr"`
	Quiet       *bool  `toml:"quiet"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.pueonav/config.toml, or "" if the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".pueonav", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies fc to cfg, skipping explicitly set flags.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString("data-root", fc.DataRoot, &cfg.DataRoot)
	s.setString("calib-dir", fc.CalibDir, &cfg.CalibDir)
	s.setString("blinding", fc.Blinding, &cfg.Blinding)
	s.setString("playlist", fc.Playlist, &cfg.Playlist)
	s.setString("bookmark", fc.Bookmark, &cfg.Bookmark)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	s.setInt("data-version", fc.Version, &cfg.Version)

	s.setBool("decimated", fc.Decimated, &cfg.Decimated)
	s.setBool("quiet", fc.Quiet, &cfg.Quiet)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Load runs the full layering for a command: the file at path (or the
// default path when empty and present), then the environment. Flags already
// hold their values; changed lists the ones set explicitly.
func Load(cfg *Config, path string, changed map[string]bool) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if path != "" && FileExists(path) {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return err
		}
		ApplyFileConfig(cfg, fc, changed)
	}
	if err := ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}
