package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mx42/stargazer/cfg"
	"github.com/mx42/stargazer/pkg/log"
)

// Server is the HTTP front of the service.
type Server struct {
	Logger  log.Logger
	Config  *cfg.Config
	Handler *Handler
	server  *http.Server
	port    int
}

func NewServer(logger log.Logger, config *cfg.Config, handler *Handler, port int) (*Server, error) {
	return &Server{
		Logger:  logger,
		Config:  config,
		Handler: handler,
		port:    port,
	}, nil
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	s.Handler.RegisterRoutes(mux)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Starting HTTP server on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}
