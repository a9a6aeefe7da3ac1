package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Serve runs the handler on addr until ctx is cancelled, then shuts down
// and waits for background jobs.
func Serve(ctx context.Context, addr string, h *Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	h.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
