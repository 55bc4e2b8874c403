package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	gap "github.com/muesli/go-app-paths"
	"gopkg.in/yaml.v3"
)

const (
	appName          = "rinku"
	settingsFileName = "settings.yaml"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggled returns the other theme.
func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

type settings struct {
	Theme Theme `yaml:"theme"`
}

// ThemePreference is the persisted light/dark choice.
type ThemePreference struct {
	path string

	mu    sync.Mutex
	theme Theme
}

// SettingsPath returns the per-user settings file location.
func SettingsPath() (string, error) {
	scope := gap.NewScope(gap.User, appName)
	p, err := scope.ConfigPath(settingsFileName)
	if err != nil {
		return "", fmt.Errorf("getting config path: %w", err)
	}
	return p, nil
}

// LogPath returns the per-user client log file location.
func LogPath() (string, error) {
	scope := gap.NewScope(gap.User, appName)
	p, err := scope.DataPath(appName + ".log")
	if err != nil {
		return "", fmt.Errorf("getting data path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	return p, nil
}

// LoadThemePreference reads the theme stored at path. A missing file or an
// unknown value yields the light theme.
func LoadThemePreference(path string) (*ThemePreference, error) {
	pref := &ThemePreference{path: path, theme: ThemeLight}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return pref, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var s settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if s.Theme == ThemeDark {
		pref.theme = ThemeDark
	}
	return pref, nil
}

func (p *ThemePreference) Theme() Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.theme
}

// Toggle switches the theme and persists the new value immediately.
func (p *ThemePreference) Toggle() (Theme, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.theme.Toggled()
	if err := p.save(next); err != nil {
		return p.theme, err
	}
	p.theme = next
	return next, nil
}

func (p *ThemePreference) save(t Theme) error {
	data, err := yaml.Marshal(settings{Theme: t})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
