// Package server exposes the splits explorer over HTTP: JSON tables, CSV
// export, player search and league baselines.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/c-tram/cycle-splits/internal/export"
	"github.com/c-tram/cycle-splits/internal/model"
	"github.com/c-tram/cycle-splits/internal/rows"
	"github.com/c-tram/cycle-splits/internal/session"
	"github.com/c-tram/cycle-splits/internal/splits"
)

// Server holds the handler dependencies. Each request gets its own session.
type Server struct {
	fetcher   session.Fetcher
	cache     session.Cache
	baselines session.BaselineSource
	season    int
	logger    zerolog.Logger
}

// New returns a Server. cache may be nil.
func New(fetcher session.Fetcher, cache session.Cache, baselines session.BaselineSource, defaultSeason int, logger zerolog.Logger) *Server {
	return &Server{
		fetcher:   fetcher,
		cache:     cache,
		baselines: baselines,
		season:    defaultSeason,
		logger:    logger,
	}
}

// Routes builds the router.
func (s *Server) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.search)
		r.Get("/views", s.views)
		r.Get("/splits", s.splitsJSON)
		r.Get("/splits.csv", s.splitsCSV)
		r.Get("/combine", s.combine)
		r.Get("/baseline/{season}", s.baseline)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "splits",
	})
}

func (s *Server) views(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, splits.Views())
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	hits, err := s.fetcher.SearchPlayers(r.Context(), q)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("q", q).Msg("search failed")
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	if hits == nil {
		hits = []model.Candidate{}
	}
	respondJSON(w, http.StatusOK, hits)
}

// splitsResponse is the JSON body of /api/splits.
type splitsResponse struct {
	Selection     model.Selection `json:"selection"`
	View          splits.View     `json:"view"`
	Kind          string          `json:"kind"`
	BaselineState string          `json:"baseline"`
	Table         splits.Table    `json:"table"`
}

func (s *Server) splitsJSON(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseRequest(w, r)
	if !ok {
		return
	}
	sess, ok := s.load(w, r, req.sel)
	if !ok {
		return
	}
	tbl, err := sess.View(req.view, req.query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, splitsResponse{
		Selection:     req.sel,
		View:          req.view,
		Kind:          req.query.Kind.String(),
		BaselineState: sess.Status().BaselineState.String(),
		Table:         tbl,
	})
}

func (s *Server) splitsCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseRequest(w, r)
	if !ok {
		return
	}
	sess, ok := s.load(w, r, req.sel)
	if !ok {
		return
	}
	tbl, err := sess.View(req.view, req.query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	name := strings.ToLower(req.sel.Team) + "-" + string(req.view) + "-" + req.query.Kind.String() + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(w, req.query.Kind, tbl.SplitGroups()); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("write csv")
	}
}

func (s *Server) combine(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseRequest(w, r)
	if !ok {
		return
	}
	keys := splitList(r.URL.Query().Get("keys"))
	if len(keys) == 0 {
		respondError(w, http.StatusBadRequest, "keys is required")
		return
	}
	sess, ok := s.load(w, r, req.sel)
	if !ok {
		return
	}
	p, err := sess.Payload()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	row, err := p.Combine(req.view, keys, r.URL.Query().Get("label"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := req.query
	q.Baseline = sess.Baseline()
	tbl := splits.Explore([]model.SplitGroup{{Rows: []model.SplitRow{row}}}, q)
	respondJSON(w, http.StatusOK, tbl)
}

func (s *Server) baseline(w http.ResponseWriter, r *http.Request) {
	season, err := strconv.Atoi(chi.URLParam(r, "season"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "season must be a year")
		return
	}
	b, err := s.baselines.Get(r.Context(), season)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, b)
}

type splitsRequest struct {
	sel   model.Selection
	view  splits.View
	query splits.Query
}

// parseRequest reads the shared query parameters: team, player, season, view,
// kind, sort, dir and filter.
func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request) (splitsRequest, bool) {
	q := r.URL.Query()
	var req splitsRequest

	req.sel.Team = strings.ToUpper(strings.TrimSpace(q.Get("team")))
	if req.sel.Team == "" {
		respondError(w, http.StatusBadRequest, "team is required")
		return req, false
	}
	req.sel.PlayerID = strings.TrimSpace(q.Get("player"))
	req.sel.Season = s.season
	if v := q.Get("season"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "season must be a year")
			return req, false
		}
		req.sel.Season = n
	}

	req.view = splits.Location
	if v := q.Get("view"); v != "" {
		view, err := splits.ParseView(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return req, false
		}
		req.view = view
	}

	if v := q.Get("kind"); v != "" {
		kind, err := model.ParseKind(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return req, false
		}
		req.query.Kind = kind
	}
	req.query.SortKey = q.Get("sort")
	req.query.Dir = rows.ParseDir(q.Get("dir"))
	req.query.Filter = q.Get("filter")
	return req, true
}

// load fetches the selection into a fresh session. Baseline failures only
// downgrade tiers to percentiles.
func (s *Server) load(w http.ResponseWriter, r *http.Request, sel model.Selection) (*session.Session, bool) {
	log := zerolog.Ctx(r.Context())
	sess := session.New(s.fetcher, s.cache, s.baselines, sel.Season, *log)
	if err := sess.Load(r.Context(), sel); err != nil {
		log.Error().Err(err).Str("selection", sel.String()).Msg("load splits failed")
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		respondError(w, status, err.Error())
		return nil, false
	}
	return sess, true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// requestID tags each request with an X-Request-ID and a logger carrying it.
func requestID(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)

			log := logger.With().Str("request_id", id).Logger()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(log.WithContext(r.Context())))

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
