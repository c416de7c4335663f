package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	ExportDir string `toml:"export_dir"`
}

// Database contains SQLite connection settings.
type Database struct {
	// Path overrides the database location. Defaults to <data_dir>/roster.db.
	Path              string `toml:"path"`
	BusyTimeoutMillis int    `toml:"busy_timeout_ms"`
}

// Server contains configuration for the local HTTP API.
type Server struct {
	Bind        string `toml:"bind"`
	Token       string `toml:"token"`
	SentryDSN   string `toml:"sentry_dsn"`
	Environment string `toml:"environment"`
}

// Validation contains the form-field rules applied to students and courses.
type Validation struct {
	StudentNoPattern  string `toml:"student_no_pattern"`
	CourseCodePattern string `toml:"course_code_pattern"`
	MinCredits        int    `toml:"min_credits"`
	MaxCredits        int    `toml:"max_credits"`
}

// Palette describes how terminal output is styled for one theme.
type Palette struct {
	TableStyle  string `toml:"table_style"`
	HeaderColor string `toml:"header_color"`
	InfoColor   string `toml:"info_color"`
	OKColor     string `toml:"ok_color"`
	WarnColor   string `toml:"warn_color"`
	ErrorColor  string `toml:"error_color"`
}

// Display contains the active theme and the palettes it can select.
type Display struct {
	Theme    string             `toml:"theme"`
	Palettes map[string]Palette `toml:"palettes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Roster.
//
// Configuration sections by subsystem:
//   - Paths: data, log, and export directories
//   - Database: SQLite location and busy timeout
//   - Server: HTTP API bind address, bearer token, and error reporting
//   - Validation: student number, course code, and credit rules
//   - Display: terminal theme and palettes
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Database   Database   `toml:"database"`
	Server     Server     `toml:"server"`
	Validation Validation `toml:"validation"`
	Display    Display    `toml:"display"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/roster/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("roster.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories. The export
// directory is created lazily by the export commands.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite file backing the records store.
func (c *Config) DatabasePath() string {
	if strings.TrimSpace(c.Database.Path) != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Paths.DataDir, "roster.db")
}

// AuditLogPath returns the append-only audit log location.
func (c *Config) AuditLogPath() string {
	return filepath.Join(c.Paths.LogDir, "audit.log")
}

// LogFilePath returns the application log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "roster.log")
}

// ActivePalette returns the palette for the configured theme.
func (c *Config) ActivePalette() Palette {
	if palette, ok := c.Display.Palettes[c.Display.Theme]; ok {
		return palette
	}
	return defaultPalettes()[ThemeLight]
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
