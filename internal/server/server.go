// Package server exposes map view sessions over HTTP. Each mounted browser map
// holds one session; the panel and pointer endpoints mutate its selection state
// and the frame and panel endpoints read what the two observers rebuilt.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/carbon-map/internal/boundary"
	"github.com/sells-group/carbon-map/internal/config"
	"github.com/sells-group/carbon-map/internal/monitoring"
	"github.com/sells-group/carbon-map/internal/session"
)

// Dataset is the shared dataset as the handlers see it.
type Dataset interface {
	// Loaded reports whether a dataset has been published yet.
	Loaded() bool
	// Overlay returns the loaded boundary overlay, or nil.
	Overlay() *boundary.Overlay
}

// Deps are the collaborators the handlers need. Metrics and Gatherer may be nil.
type Deps struct {
	Sessions  *session.Registry
	Dataset   Dataset
	Collector *monitoring.Collector
	Metrics   *monitoring.Metrics
	Gatherer  prometheus.Gatherer
	MapView   config.MapConfig
}

// Server is the HTTP front of the map service.
type Server struct {
	httpServer *http.Server
	deps       Deps
	log        *zap.Logger
}

// New builds the router and the underlying http.Server listening on addr.
func New(addr string, corsOrigins []string, deps Deps) *Server {
	s := &Server{
		deps: deps,
		log:  zap.L().With(zap.String("component", "server")),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(corsOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	gatherer := s.deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/map", s.handleMapView)
		r.Get("/status", s.handleStatus)
		r.Get("/boundaries", s.handleBoundaries)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Get("/frame", s.handleFrame)
			r.Get("/panel", s.handlePanel)
			r.Get("/state", s.handleState)
			r.Put("/scale", s.handleScale)
			r.Put("/categories/{category}", s.handleCategory)
			r.Put("/buckets/{bucket}", s.handleBucket)
			r.Post("/pointer", s.handlePointer)
		})
	})
	return r
}

// Start listens until Shutdown. It returns http.ErrServerClosed after a graceful stop.
func (s *Server) Start() error {
	s.log.Info("starting server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains connections within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleHealth is a liveness check; it answers 200 while the first load is
// still running and reports the dataset state alongside.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dataset := "loading"
	if s.deps.Dataset != nil && s.deps.Dataset.Loaded() {
		dataset = "loaded"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "dataset": dataset})
}

func (s *Server) handleMapView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.MapView)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.Collector == nil {
		writeError(w, http.StatusServiceUnavailable, "status collector not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Collector.Collect())
}

func (s *Server) handleBoundaries(w http.ResponseWriter, r *http.Request) {
	var overlay *boundary.Overlay
	if s.deps.Dataset != nil {
		overlay = s.deps.Dataset.Overlay()
	}
	if overlay == nil {
		writeError(w, http.StatusNotFound, "no boundary overlay loaded")
		return
	}
	data, err := overlay.GeoJSON()
	if err != nil {
		s.log.Error("encode boundary overlay", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to encode boundaries")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
