package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mdolezal/sreality-alert/pkg/crawler"
	"github.com/mdolezal/sreality-alert/pkg/storage"
)

const defaultPageSize = 20

// Server is the stateless read layer over the listing storage. It can also
// kick off a single crawl run on demand.
type Server struct {
	store      *storage.Storage
	runner     crawler.Runner
	corsOrigin string
	log        zerolog.Logger
}

// NewServer creates the API server. corsOrigin may be empty to disable CORS
// headers.
func NewServer(store *storage.Storage, runner crawler.Runner, corsOrigin string, log zerolog.Logger) *Server {
	return &Server{
		store:      store,
		runner:     runner,
		corsOrigin: corsOrigin,
		log:        log.With().Str("component", "api").Logger(),
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.cors)

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/apartments/", s.handleListApartments).Methods(http.MethodGet)
	r.HandleFunc("/apartments/new/", s.handleNewApartments).Methods(http.MethodGet)
	r.HandleFunc("/apartments/{id:[0-9]+}", s.handleGetApartment).Methods(http.MethodGet)
	r.HandleFunc("/crawl/trigger", s.handleTriggerCrawl).Methods(http.MethodPost)
	r.HandleFunc("/stats/", s.handleStats).Methods(http.MethodGet)

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Prague Apartments Crawler API"})
}

func (s *Server) handleListApartments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	skip := intParam(q.Get("skip"), 0)
	limit := intParam(q.Get("limit"), defaultPageSize)

	filter := storage.Filter{
		MinPrice:   optionalInt(q.Get("min_price")),
		MaxPrice:   optionalInt(q.Get("max_price")),
		MinSize:    optionalInt(q.Get("min_size")),
		MaxSize:    optionalInt(q.Get("max_size")),
		HasGarage:  optionalBool(q.Get("has_garage")),
		RoomLayout: optionalString(q.Get("room_layout")),
	}

	listings, err := s.store.QueryFiltered(filter, skip, limit)
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleGetApartment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid apartment id")
		return
	}

	listing, err := s.store.FindByID(uint(id))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Apartment not found")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleNewApartments(w http.ResponseWriter, r *http.Request) {
	hours := intParam(r.URL.Query().Get("hours"), 24)
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	listings, err := s.store.QueryCreatedAfter(cutoff)
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

// handleTriggerCrawl submits a detached run and replies immediately. The
// caller gets no confirmation of the outcome, only that the run was started.
func (s *Server) handleTriggerCrawl(w http.ResponseWriter, r *http.Request) {
	go func() {
		if _, err := s.runner.RunOnce(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("manual crawl run failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Crawling triggered"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func optionalInt(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func optionalBool(raw string) *bool {
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

func optionalString(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}
