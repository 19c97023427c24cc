package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soocke/photo-finish-go/metrics"
)

const shutdownTimeout = 10 * time.Second

// NewRouter mounts the handler routes. met may be nil.
func NewRouter(h *Handler, log *slog.Logger, met *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(log))
	if met != nil {
		r.Use(metrics.RequestMiddleware(met))
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			met.Handler(func() {
				met.SetRecording(h.ctl.Status().Recording)
				met.SetPhotos(h.ctl.Photos().Len())
			}).ServeHTTP(w, r)
		})
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Route("/capture", func(r chi.Router) {
		r.Post("/start", h.StartCapture)
		r.Post("/stop", h.StopCapture)
		r.Get("/status", h.GetStatus)
	})
	r.Route("/photos", func(r chi.Router) {
		r.Get("/", h.ListPhotos)
		r.Delete("/", h.ClearPhotos)
		r.Post("/export", h.ExportPhotos)
		r.Get("/{index}.png", h.GetPhoto)
	})
	return r
}

// Run serves handler on addr until ctx is cancelled, then drains
// connections.
func Run(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	log.Info("server starting", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutdown signal received, draining connections")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
