package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/wonny/asx-screener/pkg/config"
	"github.com/wonny/asx-screener/pkg/logger"
)

// ConnectionCloser owns connections http.Server stops tracking once they
// are hijacked, such as session websockets
type ConnectionCloser interface {
	CloseConnections()
	OpenConnections() int
}

// Server serves the screener API
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	closers    []ConnectionCloser
	logger     *logger.Logger
	config     *config.Config
}

// New creates the API server. Each closer is asked to close its
// connections when Shutdown begins.
func New(cfg *config.Config, log *logger.Logger, router http.Handler, closers ...ConnectionCloser) *Server {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// large HTML screens are rendered in one write
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	for _, c := range closers {
		srv.RegisterOnShutdown(c.CloseConnections)
	}

	return &Server{
		httpServer: srv,
		closers:    closers,
		logger:     log,
		config:     cfg,
	}
}

// Listen binds the port without serving yet. PORT=0 picks a free port.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start listens (if needed) and serves until Shutdown
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"addr": s.listener.Addr().String(),
		"env":  s.config.Env,
	}).Info("Starting API server")

	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, closes session websockets with a
// going-away frame and waits for in-flight requests until ctx ends
func (s *Server) Shutdown(ctx context.Context) error {
	open := 0
	for _, c := range s.closers {
		open += c.OpenConnections()
	}
	s.logger.WithField("websockets", open).Info("Shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	if s.listener != nil {
		// bound but never served
		_ = s.listener.Close()
	}
	return nil
}
