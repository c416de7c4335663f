package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"roster/internal/logging"
	"roster/internal/observability"
	"roster/internal/server"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(commandCtx(cmd), ctx, bind)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address, overriding server.bind")
	return cmd
}

func runServer(cmdCtx context.Context, ctx *commandContext, bind string) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if bind = strings.TrimSpace(bind); bind != "" {
		cfg.Server.Bind = bind
	}

	flush, err := observability.InitSentry(cfg.Server.SentryDSN, cfg.Server.Environment, version)
	if err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	defer flush()

	return ctx.withService(func(rt *runtime) error {
		opts := server.Options{
			Policy:   rt.policy,
			LevelVar: rt.levelVar,
			Logger:   rt.logger,
		}
		if ctx.configExists {
			opts.ConfigPath = ctx.configPath
		}
		srv, err := server.New(cfg, rt.service, opts)
		if err != nil {
			return fmt.Errorf("create server: %w", err)
		}
		if err := srv.Start(signalCtx); err != nil {
			return err
		}
		rt.logger.Info("roster server ready",
			logging.String("address", srv.Addr()),
			logging.String("database", rt.store.Path()),
			logging.String("version", version),
		)

		<-signalCtx.Done()
		rt.logger.Info("roster server shutting down")
		srv.Stop()
		<-srv.Done()
		return nil
	}, "stderr")
}
