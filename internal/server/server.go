package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"roster/internal/api"
	"roster/internal/config"
	"roster/internal/logging"
	"roster/internal/validation"
)

const shutdownTimeout = 5 * time.Second

// Options configures optional server behaviour.
type Options struct {
	// ConfigPath is watched for changes. Empty disables hot reload.
	ConfigPath string
	// Policy is swapped on reload. When nil, reload only adjusts the log level.
	Policy *validation.Holder
	// LevelVar is adjusted on reload.
	LevelVar *slog.LevelVar
	Logger   *slog.Logger
}

// Server serves the HTTP API for one data directory.
type Server struct {
	cfg     *config.Config
	service *api.Service
	opts    Options
	logger  *slog.Logger
	handler http.Handler

	lockPath string
	lock     *flock.Flock

	listener net.Listener
	server   *http.Server
	watcher  *configWatcher
	running  atomic.Bool

	stopOnce sync.Once
	stopped  chan struct{}
}

// New builds a server. Nothing is bound until Start.
func New(cfg *config.Config, service *api.Service, opts Options) (*Server, error) {
	if cfg == nil || service == nil {
		return nil, errors.New("server requires config and service")
	}
	if strings.TrimSpace(cfg.Server.Bind) == "" {
		return nil, errors.New("server.bind is empty")
	}
	logger := logging.NewComponentLogger(opts.Logger, "api-server")
	lockPath := filepath.Join(cfg.Paths.DataDir, "roster-serve.lock")
	s := &Server{
		cfg:      cfg,
		service:  service,
		opts:     opts,
		logger:   logger,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		stopped:  make(chan struct{}),
	}
	s.handler = s.routes()
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if opts.ConfigPath != "" {
		s.watcher = newConfigWatcher(opts.ConfigPath, s.applyConfig, logger)
	}
	return s, nil
}

// Handler returns the root handler, including auth and middleware.
func (s *Server) Handler() http.Handler { return s.handler }

// LockPath returns the single-instance lock file location.
func (s *Server) LockPath() string { return s.lockPath }

// Start acquires the instance lock, binds the listener and serves in the
// background until ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("server already running")
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another roster server is already running for %s", s.cfg.Paths.DataDir)
	}

	listener, err := net.Listen("tcp", s.cfg.Server.Bind)
	if err != nil {
		_ = s.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.running.Store(true)

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	if s.watcher != nil {
		if err := s.watcher.start(ctx); err != nil {
			s.logger.Warn("config reload disabled", logging.Error(err))
		}
	}

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", s.lockPath),
		logging.String("auth", authMode(s.cfg.Server.Token)),
	)
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the listener down gracefully and releases the lock. Every
// caller blocks until in-flight requests have drained.
func (s *Server) Stop() {
	if !s.running.Load() {
		return
	}
	s.stopOnce.Do(s.shutdown)
	<-s.stopped
}

// Done is closed once a started server has fully shut down.
func (s *Server) Done() <-chan struct{} { return s.stopped }

func (s *Server) shutdown() {
	defer close(s.stopped)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api server shutdown", logging.Error(err))
	}
	if s.watcher != nil {
		s.watcher.stop()
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release server lock", logging.Error(err))
	}
	s.running.Store(false)
	s.logger.Info("api server stopped")
}

// Run starts the server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// applyConfig swaps the reloadable settings from a freshly loaded config.
func (s *Server) applyConfig(cfg *config.Config) error {
	if s.opts.Policy != nil {
		policy, err := validation.NewPolicy(cfg.Validation)
		if err != nil {
			return err
		}
		s.opts.Policy.Swap(policy)
	}
	if s.opts.LevelVar != nil {
		s.opts.LevelVar.Set(logging.ParseLevel(cfg.Logging.Level))
	}
	s.logger.Info("configuration reloaded",
		logging.String("log_level", cfg.Logging.Level),
		logging.String("student_no_pattern", cfg.Validation.StudentNoPattern),
	)
	return nil
}

func authMode(token string) string {
	if token == "" {
		return "none"
	}
	return "bearer"
}
