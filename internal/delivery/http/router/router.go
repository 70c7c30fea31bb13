package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/catalog-imager/internal/delivery/http/handler"
	"github.com/user/catalog-imager/internal/delivery/http/middleware"
	"go.uber.org/zap"
)

// New builds the API router.
func New(h *handler.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Post("/resolve", h.HandleResolve)
		r.Get("/normalize", h.HandleNormalize)
		r.Get("/selection", h.HandleSelection)
		r.Get("/runs", h.HandleRuns)
	})

	return r
}
