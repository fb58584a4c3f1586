package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/artpar/shipit/internal/core/deployment"
	"github.com/artpar/shipit/internal/shell/api"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd.Flags())
			if err != nil {
				return err
			}

			logger.Info("starting shipit",
				"version", Version,
				"config", opts.configPath,
			)

			return NewServer(cfg, logger).Start(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("host", "", "Address to listen on")
	flags.Int("port", 0, "Port to listen on")
	flags.String("mode", "", "Default output mode for requests: config or task")
	flags.String("order", "", "Default service order for requests: declared or dependencies")
	flags.Int("concurrency", 0, "Maximum number of services converted in parallel per request")

	return cmd
}

// =============================================================================
// Server
// =============================================================================

// Server represents the conversion API server.
type Server struct {
	config     *Config
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a new server with the given config. The config must have
// passed Validate.
func NewServer(cfg *Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mode, _ := deployment.ParseMode(cfg.Convert.Mode)
	order, _ := deployment.ParseOrder(cfg.Convert.Order)

	handler := api.SetupAPI(api.APIConfig{
		Logger:        logger,
		Version:       Version,
		DefaultMode:   mode,
		DefaultOrder:  order,
		MaxConcurrent: cfg.Convert.Concurrency,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		ServerURL:     fmt.Sprintf("http://%s", cfg.Server.Address()),
	})

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Address(),
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		logger: logger,
	}
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return &CommandError{
			Op:       "listen",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case err := <-errCh:
		return &CommandError{
			Op:       "serve",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("received shutdown signal")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return &CommandError{
			Op:       "shutdown",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	}

	s.logger.Info("shutdown complete")
	return nil
}
