package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultWriteTimeout = 45 * time.Second
	defaultGrace        = 15 * time.Second
)

type Option func(*http.Server)

// WithWriteTimeout sets how long a handler may take to write its response.
// Reads fan out to every source, so this has to cover the slowest fetch.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *http.Server) {
		if d > 0 {
			s.WriteTimeout = d
		}
	}
}

// New builds the regsync HTTP server.
func New(addr string, handler http.Handler, opts ...Option) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most grace. A listener failure is returned immediately.
func Run(ctx context.Context, srv *http.Server, grace time.Duration) error {
	if grace <= 0 {
		grace = defaultGrace
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
