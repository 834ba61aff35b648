package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"themeforge/internal/config"
	"themeforge/internal/ui"
)

// Idle rate-limit buckets older than this are dropped.
const limiterIdle = 10 * time.Minute

// addrWait bounds how long Addr waits for Start to bind.
var addrWait = 5 * time.Second

// Server serves theme endpoints until its context is cancelled.
type Server struct {
	Config  *config.Config
	Handler *Handler

	httpServer *http.Server
	ln         net.Listener
	ready      chan struct{}
}

// NewServer creates a theme server for cfg.
func NewServer(cfg *config.Config) *Server {
	return &Server{
		Config:  cfg,
		Handler: NewHandler(cfg),
		ready:   make(chan struct{}),
	}
}

// Addr returns the bound listener address. It waits for Start to bind and
// returns nil if Start is not called within addrWait or failed to listen.
func (s *Server) Addr() net.Addr {
	select {
	case <-s.ready:
	case <-time.After(addrWait):
		return nil
	}
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start listens on Config.Listen and blocks until ctx is done, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	var err error
	s.ln, err = net.Listen("tcp", s.Config.Listen)
	close(s.ready)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Config.Listen, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ui.LogStatus("info", "Theme server listening on "+s.ln.Addr().String())

	go s.pruneLimiter(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(s.ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	ui.LogStatus("success", "Theme server stopped")
	return nil
}

func (s *Server) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Handler.limiter.Prune(limiterIdle); n > 0 {
				ui.LogStatus("debug", fmt.Sprintf("Pruned %d idle rate-limit buckets", n))
			}
		}
	}
}
