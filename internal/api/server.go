// Package api exposes the station catalog over HTTP: CRUD under /stations
// and read-only aggregates under /analytics.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sells-group/ev-stations-api/internal/analytics"
	"github.com/sells-group/ev-stations-api/internal/store"
)

// Options tunes the HTTP middleware stack.
type Options struct {
	CORSOrigins  []string
	RateLimitRPS float64
}

// Server holds the handler dependencies.
type Server struct {
	store  store.Store
	engine *analytics.Engine
}

func NewServer(st store.Store) *Server {
	return &Server{store: st, engine: analytics.New(st)}
}

// Router builds the chi handler with request logging, CORS, and an optional
// global rate limit.
func (s *Server) Router(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}
	if opts.RateLimitRPS > 0 {
		r.Use(rateLimit(opts.RateLimitRPS))
	}

	r.Get("/healthz", s.handleHealth)

	r.Route("/stations", func(r chi.Router) {
		r.Get("/", s.handleListStations)
		r.Post("/", s.handleCreateStation)
		r.Get("/{id}", s.handleGetStation)
		r.Put("/{id}", s.handleUpdateStation)
		r.Delete("/{id}", s.handleDeleteStation)
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/count", s.handleCount)
		r.Get("/count_by_country", s.handleCountByCountry)
		r.Get("/nearest", s.handleNearest)
		r.Get("/by_operator", s.handleByOperator)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
