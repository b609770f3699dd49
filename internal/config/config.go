// Package config manages application configuration: the human-editable JSON
// runtime config, the persisted TOML settings and the on-disk directory layout.
package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AppName names every per-user directory and file the application owns.
const AppName = "azote"

// Config holds the runtime options that are read from azoterc.
type Config struct {
	ThumbWidth              int      `json:"thumb_width"`
	ThumbHeight             int      `json:"thumb_height"`
	Columns                 int      `json:"columns"`
	TrackingIntervalSeconds int      `json:"tracking_interval_seconds"`
	PaletteQuality          int      `json:"palette_quality"`
	PaletteColors           int      `json:"palette_colors"`
	AllowedTypes            []string `json:"allowed_types"`
	LogLevel                string   `json:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ThumbWidth:              240,
		ThumbHeight:             135,
		Columns:                 3,
		TrackingIntervalSeconds: 5,
		PaletteQuality:          10,
		PaletteColors:           6,
		AllowedTypes:            []string{"jpg", "jpeg", "png", "webp"},
		LogLevel:                "info",
	}
}

// GetConfigPath returns $XDG_CONFIG_HOME/azote/azoterc.
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName, "azoterc"), nil
}

// Load reads azoterc. A missing file is created with the defaults so that
// users have something to edit.
func Load() (Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, overlaying it onto the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, cfg.SaveTo(path)
		}
		return cfg, err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), err
	}
	cfg.Validate()
	return cfg, nil
}

// Validate replaces out-of-range values with their defaults and normalises
// the allowed file types to lowercase extensions without a leading dot.
func (c *Config) Validate() {
	def := Default()
	if c.ThumbWidth < 16 || c.ThumbWidth > 1024 {
		c.ThumbWidth = def.ThumbWidth
	}
	if c.ThumbHeight < 9 || c.ThumbHeight > 1024 {
		c.ThumbHeight = def.ThumbHeight
	}
	if c.Columns < 1 {
		c.Columns = def.Columns
	}
	if c.TrackingIntervalSeconds < 1 {
		c.TrackingIntervalSeconds = def.TrackingIntervalSeconds
	}
	if c.PaletteQuality < 1 {
		c.PaletteQuality = def.PaletteQuality
	}
	if c.PaletteColors < 1 || c.PaletteColors > 32 {
		c.PaletteColors = def.PaletteColors
	}

	var types []string
	seen := map[string]bool{}
	for _, t := range c.AllowedTypes {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	if len(types) == 0 {
		types = def.AllowedTypes
	}
	c.AllowedTypes = types

	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// SaveTo writes the config as indented JSON.
func (c Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ExpandUser expands a path starting with ~ to the user's home.
func ExpandUser(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
