package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"roster/internal/fileutil"
)

// SaveTheme records theme as display.theme in the config file at path,
// creating the file when it does not exist. Other keys are preserved;
// comments are not.
func SaveTheme(path, theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme == "" {
		return errors.New("theme name is required")
	}
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}

	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("read config: %w", err)
	}

	display, _ := doc["display"].(map[string]any)
	if display == nil {
		display = map[string]any{}
	}
	display["theme"] = theme
	doc["display"] = display

	encoded, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
