// Package httpapi exposes a read-only status surface for a running bot:
// health, result statistics, session snapshots and a live round feed.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"example.com/gallows-bot/internal/game"
	"example.com/gallows-bot/internal/store"
)

type Server struct {
	results  store.Results
	sessions game.SessionStore
	hub      *Hub
	log      zerolog.Logger
}

func NewServer(results store.Results, sessions game.SessionStore, hub *Hub, log zerolog.Logger) *Server {
	return &Server{results: results, sessions: sessions, hub: hub, log: log}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Get("/stats", s.handleStats)
		r.Get("/results", s.handleResults)
		r.Get("/sessions/{id}", s.handleSession)
	})

	if s.hub != nil {
		r.Get("/ws", s.hub.ServeHTTP)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})
	return r
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.results.Summary(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("load summary")
		writeError(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	results, err := s.results.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("load recent results")
		writeError(w, http.StatusInternalServerError, "internal", "failed to load results")
		return
	}
	if results == nil {
		results = []game.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, ok, err := s.sessions.Load(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Str("session", id).Msg("load session")
		writeError(w, http.StatusInternalServerError, "internal", "storage error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http request")
	})
}
