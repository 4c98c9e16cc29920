// Package server implements the metromap HTTP API.
//
// Routes:
//
//	GET    /healthz
//	POST   /api/v1/layout                career map in, layout JSON out
//	POST   /api/v1/render                career map in, artifact out
//	POST   /api/v1/maps                  store a career map
//	GET    /api/v1/maps                  list stored maps
//	GET    /api/v1/maps/{id}             get a stored map
//	PUT    /api/v1/maps/{id}             replace a stored map
//	DELETE /api/v1/maps/{id}             delete a stored map
//	GET    /api/v1/maps/{id}/layout      layout of a stored map
//	GET    /api/v1/maps/{id}/render      artifact of a stored map
//
// Career maps are read as JSON unless the Content-Type names TOML or YAML.
// Layout and render options are query parameters; see optionsFromQuery.
// Errors are JSON objects {"code": ..., "message": ...}.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/metromap/pkg/config"
)

// Server represents the HTTP server lifecycle.
type Server struct {
	httpServer      *http.Server
	logger          *log.Logger
	shutdownTimeout time.Duration
}

// New constructs a Server serving handler on cfg.Addr.
func New(cfg config.ServerConfig, handler http.Handler, logger *log.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout.Duration,
			WriteTimeout:      cfg.WriteTimeout.Duration,
			IdleTimeout:       cfg.IdleTimeout.Duration,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout.Duration,
	}
}

// Start begins listening for HTTP traffic.
func (s *Server) Start() error {
	s.logger.Info("starting http server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting http server", "addr", ln.Addr().String())
	err := s.httpServer.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully terminates all active connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

// Run starts the server and shuts it down when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
