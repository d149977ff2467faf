package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/SirJonasM/fpga-router/pkg/config"
	"github.com/SirJonasM/fpga-router/pkg/logger"
	"github.com/SirJonasM/fpga-router/pkg/telemetry"
)

// Server обёртка над http.Server с middleware и graceful shutdown
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	state      *AppState
	runner     *Runner
}

// New собирает сервер job-control API
func New(cfg *config.Config, state *AppState) *Server {
	handler := Chain(state.Routes(),
		RequestIDMiddleware,
		LoggingMiddleware,
		CORSMiddleware(cfg.HTTP.CORS),
		MetricsMiddleware(state.metrics),
		telemetry.HTTPMiddleware,
	)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:      handler,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
		cfg:    cfg,
		state:  state,
		runner: NewRunner(state),
	}
}

// Start запускает runner и HTTP сервер, блокирует до SIGINT/SIGTERM
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.runner.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("job-control server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
