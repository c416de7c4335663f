package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDatabase(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeValidation()
	c.normalizeDisplay()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDatabase() error {
	var err error
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path != "" {
		if c.Database.Path, err = expandPath(c.Database.Path); err != nil {
			return fmt.Errorf("database.path: %w", err)
		}
	}
	if c.Database.BusyTimeoutMillis <= 0 {
		c.Database.BusyTimeoutMillis = defaultBusyTimeoutMillis
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.Token = strings.TrimSpace(c.Server.Token)
	if c.Server.Token == "" {
		if value, ok := os.LookupEnv("ROSTER_API_TOKEN"); ok {
			c.Server.Token = strings.TrimSpace(value)
		}
	}
	c.Server.SentryDSN = strings.TrimSpace(c.Server.SentryDSN)
	if c.Server.SentryDSN == "" {
		if value, ok := os.LookupEnv("ROSTER_SENTRY_DSN"); ok {
			c.Server.SentryDSN = strings.TrimSpace(value)
		}
	}
	c.Server.Environment = strings.TrimSpace(c.Server.Environment)
	if c.Server.Environment == "" {
		c.Server.Environment = defaultServerEnvironment
	}
}

func (c *Config) normalizeValidation() {
	c.Validation.StudentNoPattern = strings.TrimSpace(c.Validation.StudentNoPattern)
	if c.Validation.StudentNoPattern == "" {
		c.Validation.StudentNoPattern = defaultStudentNoPattern
	}
	c.Validation.CourseCodePattern = strings.TrimSpace(c.Validation.CourseCodePattern)
	if c.Validation.CourseCodePattern == "" {
		c.Validation.CourseCodePattern = defaultCourseCodePattern
	}
}

func (c *Config) normalizeDisplay() {
	c.Display.Theme = strings.ToLower(strings.TrimSpace(c.Display.Theme))
	if c.Display.Theme == "" {
		c.Display.Theme = defaultTheme
	}
	defaults := defaultPalettes()
	if c.Display.Palettes == nil {
		c.Display.Palettes = make(map[string]Palette, len(defaults))
	}
	normalized := make(map[string]Palette, len(c.Display.Palettes)+len(defaults))
	for name, palette := range c.Display.Palettes {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		base, ok := defaults[key]
		if !ok {
			base = defaults[ThemeLight]
		}
		normalized[key] = fillPalette(palette, base)
	}
	for name, palette := range defaults {
		if _, ok := normalized[name]; !ok {
			normalized[name] = palette
		}
	}
	c.Display.Palettes = normalized
}

func fillPalette(p, base Palette) Palette {
	pick := func(value, fallback string) string {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			return fallback
		}
		return value
	}
	return Palette{
		TableStyle:  pick(p.TableStyle, base.TableStyle),
		HeaderColor: pick(p.HeaderColor, base.HeaderColor),
		InfoColor:   pick(p.InfoColor, base.InfoColor),
		OKColor:     pick(p.OKColor, base.OKColor),
		WarnColor:   pick(p.WarnColor, base.WarnColor),
		ErrorColor:  pick(p.ErrorColor, base.ErrorColor),
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("ROSTER_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
