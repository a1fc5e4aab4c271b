package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/aleister1102/ingestor/internal/config"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// Server exposes a Recorder over HTTP.
type Server struct {
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a metrics server listening on cfg.ListenAddress.
func NewServer(cfg config.MetricsConfig, recorder *Recorder, logger zerolog.Logger) *Server {
	path := cfg.Path
	if path == "" {
		path = config.DefaultMetricsPath
	}

	mux := http.NewServeMux()
	mux.Handle(path, recorder.Handler())

	return &Server{
		server: &http.Server{
			Addr:              cfg.ListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.With().Str("module", "MetricsServer").Logger(),
	}
}

// Run serves until ctx is cancelled, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.logger.Error().Err(err).Str("address", s.server.Addr).Msg("Failed to start metrics listener")
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on an existing listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()
	s.logger.Info().Str("address", ln.Addr().String()).Msg("Metrics listener started")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("Metrics listener did not shut down cleanly")
		return err
	}
	s.logger.Info().Msg("Metrics listener stopped")
	return nil
}
