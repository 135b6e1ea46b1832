package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/profile-harvester/internal/delivery/http/handler"
	"github.com/user/profile-harvester/internal/delivery/http/middleware"
	"github.com/user/profile-harvester/internal/monitoring"
)

// Options tune the router. RequestTimeout must cover a full synchronous harvest.
type Options struct {
	RequestTimeout time.Duration
	Gatherer       prometheus.Gatherer
}

func New(h *handler.Handler, m *monitoring.Metrics, logger *zap.Logger, opts Options) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(opts.RequestTimeout))

	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Post("/harvest", h.HandleHarvest)
		r.Post("/seeds", h.HandleEnqueue)
		r.Get("/status", h.HandleStatus)
	})

	return r
}
