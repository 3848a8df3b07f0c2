// Package server exposes a caching breed provider over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	breedcache "github.com/ericselin/breedcache"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

type subBreedsResponse struct {
	Breed     string   `json:"breed"`
	SubBreeds []string `json:"subBreeds"`
	Count     int      `json:"count"`
}

type statsResponse struct {
	CallsMade  int      `json:"callsMade"`
	CachedKeys []string `json:"cachedKeys"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves lookups through a caching provider.
// The provider is called from many goroutines, so it should be created
// with breedcache.Config.Concurrent set.
type Server struct {
	provider *breedcache.CachingProvider
	router   chi.Router
}

// New creates the server. The global zerolog logger is used if logger is nil.
func New(provider *breedcache.CachingProvider, logger *zerolog.Logger) *Server {
	if logger == nil {
		logger = &log.Logger
	}
	s := &Server{provider: provider}

	r := chi.NewRouter()
	r.Use(hlog.NewHandler(logger.With().Str("component", "server").Logger()))
	r.Use(hlog.RequestIDHandler("requestId", "X-Request-Id"))
	r.Use(hlog.AccessHandler(logRequest))
	r.Get("/breeds/{breed}/sub-breeds", s.subBreeds)
	r.Get("/stats", s.stats)
	s.router = r

	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) subBreeds(w http.ResponseWriter, r *http.Request) {
	// chi hands out the escaped segment when the path has one
	breed, err := url.PathUnescape(chi.URLParam(r, "breed"))
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid breed"})
		return
	}
	subBreeds, err := s.provider.SubBreeds(r.Context(), breed)
	if breedcache.IsNotFound(err) {
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	} else if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("breed", breed).Msg("Lookup failed")
		writeJSON(w, r, http.StatusBadGateway, errorResponse{Error: "lookup failed"})
		return
	}
	writeJSON(w, r, http.StatusOK, subBreedsResponse{
		Breed:     breed,
		SubBreeds: subBreeds,
		Count:     len(subBreeds),
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	keys, err := s.provider.CachedKeys()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Could not list cached keys")
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "could not list cache"})
		return
	}
	writeJSON(w, r, http.StatusOK, statsResponse{
		CallsMade:  s.provider.CallsMade(),
		CachedKeys: keys,
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Could not write response body to client")
	}
}

func logRequest(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Debug().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Sending response to client")
}
