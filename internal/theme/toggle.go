package theme

import (
	"errors"
	"fmt"
	"strings"

	"roster/internal/config"
)

// Next returns the theme a toggle switches to. Unknown themes toggle to dark,
// as if light were active.
func Next(current string) string {
	if strings.EqualFold(strings.TrimSpace(current), config.ThemeDark) {
		return config.ThemeLight
	}
	return config.ThemeDark
}

// ToggleLabel names the action the next toggle performs while active is in
// effect: light shows "Dark Mode", dark shows "Light Mode".
func ToggleLabel(active string) string {
	if Next(active) == config.ThemeDark {
		return "Dark Mode"
	}
	return "Light Mode"
}

// ToggleResult reports a completed toggle.
type ToggleResult struct {
	Previous    string `json:"previous"`
	Active      string `json:"active"`
	ToggleLabel string `json:"toggleLabel"`
	ConfigPath  string `json:"configPath"`
}

// Toggle flips cfg between light and dark, persists the choice to the
// config file at path and updates cfg in place.
func Toggle(path string, cfg *config.Config) (ToggleResult, error) {
	if cfg == nil {
		return ToggleResult{}, errors.New("toggle theme: config is nil")
	}
	if strings.TrimSpace(path) == "" {
		return ToggleResult{}, errors.New("toggle theme: config path is required")
	}
	previous := cfg.Display.Theme
	next := Next(previous)
	if _, ok := cfg.Display.Palettes[next]; !ok {
		return ToggleResult{}, fmt.Errorf("toggle theme: no palette for %q", next)
	}
	if err := config.SaveTheme(path, next); err != nil {
		return ToggleResult{}, fmt.Errorf("toggle theme: %w", err)
	}
	cfg.Display.Theme = next
	return ToggleResult{
		Previous:    previous,
		Active:      next,
		ToggleLabel: ToggleLabel(next),
		ConfigPath:  path,
	}, nil
}
