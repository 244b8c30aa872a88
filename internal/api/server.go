// Package api serves the worker's ops endpoints: metrics, health, standings
// and the playoff bracket.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

type Server struct {
	server *http.Server
}

func NewServer(port int, d Deps) *Server {
	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           NewHandler(d),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// NewHandler returns the routed handler without a listener
func NewHandler(d Deps) http.Handler {
	return getRouter(d, render.New())
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.server.Addr).Msg("Starting ops server")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("ops server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down ops server: %w", err)
	}
	log.Info().Msg("Ops server stopped")
	return nil
}
