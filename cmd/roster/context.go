package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"roster/internal/api"
	"roster/internal/audit"
	"roster/internal/config"
	"roster/internal/logging"
	"roster/internal/records"
	"roster/internal/theme"
	"roster/internal/validation"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads .env from the working directory, then the config file.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.configErr = fmt.Errorf("load .env: %w", err)
			return
		}
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// runtime holds the per-command dependencies opened by withService.
type runtime struct {
	cfg      *config.Config
	store    *records.Store
	service  *api.Service
	policy   *validation.Holder
	audit    *audit.Log
	logger   *slog.Logger
	levelVar *slog.LevelVar
}

// withService opens the store and wires the service layer for the duration
// of fn. extraLogOutputs are added to the log file output.
func (c *commandContext) withService(fn func(*runtime) error, extraLogOutputs ...string) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	levelVar := new(slog.LevelVar)
	logger, closeLog, err := logging.NewFromConfig(cfg, levelVar, extraLogOutputs...)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()
	policy, err := validation.NewPolicy(cfg.Validation)
	if err != nil {
		return err
	}
	store, err := records.Open(cfg)
	if err != nil {
		return fmt.Errorf("open records database: %w", err)
	}
	defer store.Close()

	holder := validation.NewHolder(policy)
	auditLog := audit.New(cfg.AuditLogPath())
	rt := &runtime{
		cfg:      cfg,
		store:    store,
		service:  api.New(store, holder, auditLog, logger),
		policy:   holder,
		audit:    auditLog,
		logger:   logger,
		levelVar: levelVar,
	}
	return fn(rt)
}

// themeFor resolves the active theme, colorizing only terminal output.
func (c *commandContext) themeFor(cmd *cobra.Command) *theme.Theme {
	cfg := c.configValue()
	if cfg == nil {
		return theme.Plain()
	}
	th, err := theme.FromConfig(cfg, shouldColorize(cmd.OutOrStdout()))
	if err != nil {
		return theme.Plain()
	}
	return th
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
