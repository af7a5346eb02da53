// Package api serves the ranked feed and establishment list as JSON.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"mspro-labs/hopmetrics/internal/ai"
	"mspro-labs/hopmetrics/internal/db"
	"mspro-labs/hopmetrics/internal/observability"
)

// Server holds the router and what the handlers read from.
type Server struct {
	mux      *chi.Mux
	store    *db.Store
	embedder ai.Embedder
}

// New builds the router. A nil embedder leaves /api/search unmounted, and a nil
// registry leaves /metrics unmounted.
func New(store *db.Store, embedder ai.Embedder, reg *prometheus.Registry) *Server {
	m := chi.NewRouter()

	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(timeout(30 * time.Second))
	m.Use(requestLogger(log.Logger))

	s := &Server{mux: m, store: store, embedder: embedder}

	m.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	m.Route("/api", func(r chi.Router) {
		r.Get("/beers", s.listBeers)
		r.Get("/establishments", s.listEstablishments)
		if embedder != nil {
			r.Get("/search", s.search)
		}
	})
	if reg != nil {
		m.Handle("/metrics", observability.MetricsHandler(reg))
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
