// Package settings reads the user's display preferences and watches the
// file for changes.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrReadSettings    = errors.New("read settings failed")
)

// Theme selects the chart palette.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Settings are the user preferences persisted next to saved work.
type Settings struct {
	Theme    Theme `yaml:"theme" json:"theme"`
	AutoSave bool  `yaml:"auto_save" json:"auto_save"`
}

// Default is used when no settings file exists.
func Default() Settings {
	return Settings{Theme: ThemeLight, AutoSave: true}
}

// Dark reports whether the dark palette is selected.
func (s Settings) Dark() bool { return s.Theme == ThemeDark }

// Validate rejects unknown themes.
func (s Settings) Validate() error {
	switch s.Theme {
	case ThemeLight, ThemeDark:
		return nil
	}
	return fmt.Errorf("%w: theme %q", ErrInvalidSettings, s.Theme)
}

// Load reads path. A missing file yields Default; keys absent from the
// file keep their default values.
func Load(path string) (Settings, error) {
	s := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("%w: %w", ErrReadSettings, err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Default(), fmt.Errorf("%w: %s: %w", ErrReadSettings, path, err)
	}
	s.Theme = Theme(strings.ToLower(strings.TrimSpace(string(s.Theme))))
	if s.Theme == "" {
		s.Theme = ThemeLight
	}
	if err := s.Validate(); err != nil {
		return Default(), err
	}
	return s, nil
}

// Save writes s to path, creating the directory if needed.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
