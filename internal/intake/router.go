// Package intake serves the lead submission endpoint.
//
// Endpoints:
//
//	POST /submit-form  - accept a lead
//	GET  /admin/leads  - list stored leads (X-Admin-Key when configured)
//	GET  /health       - liveness
package intake

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/terrasite/leadform/internal/logger"
)

// NewRouter registers every endpoint on a fresh mux and wraps it with the
// middleware chain.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /submit-form", h.SubmitForm)
	mux.HandleFunc("GET /admin/leads", h.AdminLeads)

	return Recover(WithLogging(CORS(mux)))
}

// Serve runs an HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
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
	logger.Info("Shutting down intake server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
