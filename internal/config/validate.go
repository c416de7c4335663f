package config

import (
	"errors"
	"fmt"
	"regexp"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateValidation(); err != nil {
		return err
	}
	if err := c.validateDisplay(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateValidation() error {
	if _, err := regexp.Compile(c.Validation.StudentNoPattern); err != nil {
		return fmt.Errorf("validation.student_no_pattern: %w", err)
	}
	if _, err := regexp.Compile(c.Validation.CourseCodePattern); err != nil {
		return fmt.Errorf("validation.course_code_pattern: %w", err)
	}
	if c.Validation.MinCredits < 0 {
		return errors.New("validation.min_credits must be >= 0")
	}
	if c.Validation.MaxCredits < c.Validation.MinCredits {
		return errors.New("validation.max_credits must be >= validation.min_credits")
	}
	return nil
}

func (c *Config) validateDisplay() error {
	if _, ok := c.Display.Palettes[c.Display.Theme]; !ok {
		return fmt.Errorf("display.theme %q has no palette (define [display.palettes.%s])", c.Display.Theme, c.Display.Theme)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
