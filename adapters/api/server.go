// Package api exposes the statistical engines over a JSON HTTP surface. One
// table is loaded at startup; every analysis endpoint runs against it and,
// when a repository is configured, stores its envelope for later retrieval.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gridstat/adapters/stats/profile"
	"gridstat/domain/core"
	"gridstat/domain/dataset"
	"gridstat/domain/stats"
	"gridstat/internal"
	"gridstat/internal/errors"
	"gridstat/internal/report"
	"gridstat/ports"
)

// Server wires the engine facade, the loaded table and the optional result
// repository behind a chi router.
type Server struct {
	table    *dataset.Table
	engine   ports.StatsPort
	repo     ports.ResultRepository // nil when persistence is disabled
	profiler *profile.Profiler
	logger   *internal.Logger
}

// NewServer creates a server over one loaded table; repo may be nil
func NewServer(table *dataset.Table, engine ports.StatsPort, repo ports.ResultRepository) *Server {
	return &Server{
		table:    table,
		engine:   engine,
		repo:     repo,
		profiler: profile.NewProfiler(),
		logger:   internal.NewDefaultLogger("api"),
	}
}

// Router assembles the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/variables", s.handleVariables)
	r.Get("/profile", s.handleProfile)

	r.Route("/analyses", func(r chi.Router) {
		r.Post("/descriptive", s.handleDescriptive)
		r.Post("/correlation", s.handleCorrelation)
		r.Post("/partial", s.handlePartial)
		r.Post("/distance", s.handleDistance)
		r.Post("/regression", s.handleRegression)

		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleGet)
		r.Get("/{id}/report", s.handleReport)
		r.Delete("/{id}", s.handleDelete)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"dataset":   s.table.Name,
		"variables": s.table.ColumnCount(),
		"cases":     s.table.RowCount(),
	})
}

func (s *Server) handleVariables(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.table.VariableKeys())
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiler.Table(s.table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleDescriptive(w http.ResponseWriter, r *http.Request) {
	var req descriptiveRequest
	if !s.decode(w, r, &req) {
		return
	}
	key, err := core.ParseVariableKey(req.Variable)
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	result, err := s.engine.Describe(s.table, key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.store(r.Context(), result)

	// Optional extras ride along with the envelope.
	if len(req.Probs) == 0 && req.Bins <= 0 {
		s.writeJSON(w, http.StatusOK, result)
		return
	}
	response := map[string]any{"result": result}
	if len(req.Probs) > 0 {
		values, err := s.engine.Percentiles(s.table, key, req.Probs)
		if err != nil {
			s.writeError(w, err)
			return
		}
		response["percentiles"] = values
	}
	if req.Bins > 0 {
		bins, err := s.engine.Frequencies(s.table, key, req.Bins)
		if err != nil {
			s.writeError(w, err)
			return
		}
		response["frequencies"] = bins
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	var req correlationRequest
	if !s.decode(w, r, &req) {
		return
	}
	keys, err := core.VariableKeys(req.Variables)
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	method, tail, policy, err := correlationOptions(req.Method, req.Tail, req.Policy)
	if err != nil {
		s.writeError(w, err)
		return
	}
	result, err := s.engine.Correlate(s.table, keys, method, tail, policy)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.store(r.Context(), result)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePartial(w http.ResponseWriter, r *http.Request) {
	var req partialRequest
	if !s.decode(w, r, &req) {
		return
	}
	keys, err := core.VariableKeys(req.Variables)
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	controls, err := core.VariableKeys(req.Controls)
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	result, err := s.engine.PartialCorrelate(s.table, keys, controls)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.store(r.Context(), result)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	var req distanceRequest
	if !s.decode(w, r, &req) {
		return
	}
	keys, err := core.VariableKeys(req.Variables)
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	metric := stats.DistanceMetric(req.Metric)
	if req.Metric == "" {
		metric = stats.MetricEuclidean
	}
	result, err := s.engine.Distances(s.table, keys, metric)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.store(r.Context(), result)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRegression(w http.ResponseWriter, r *http.Request) {
	var req regressionRequest
	if !s.decode(w, r, &req) {
		return
	}
	dependent, err := core.ParseVariableKey(req.Dependent)
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	independents, err := core.VariableKeys(req.Independents)
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	result, err := s.engine.Regress(s.table, dependent, independents)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.store(r.Context(), result)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, errors.NotFound("result store"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	results, err := s.repo.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	result, ok := s.loadResult(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	result, ok := s.loadResult(w, r)
	if !ok {
		return
	}
	html, err := report.HTML(result)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, errors.NotFound("result store"))
		return
	}
	id := core.AnalysisID(chi.URLParam(r, "id"))
	if err := s.repo.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) loadResult(w http.ResponseWriter, r *http.Request) (*stats.AnalysisResult, bool) {
	if s.repo == nil {
		s.writeError(w, errors.NotFound("result store"))
		return nil, false
	}
	id := core.AnalysisID(chi.URLParam(r, "id"))
	result, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return result, true
}

// store persists an envelope when a repository is configured. Persistence
// failures are logged, not surfaced: the computed result still goes out.
func (s *Server) store(ctx context.Context, result *stats.AnalysisResult) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, result); err != nil {
		s.logger.Error("storing %s result %s: %v", result.Kind, result.ID, err)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, errors.InvalidInput("malformed request body: "+err.Error()))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	s.writeJSON(w, statusFor(code), errorResponse{Code: code, Error: err.Error()})
}

// statusFor maps the failure taxonomy onto HTTP statuses
func statusFor(code string) int {
	switch code {
	case errors.CodeEmptyInput, errors.CodeDimensionMismatch,
		errors.CodeInsufficientDF, errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeSingularMatrix:
		return http.StatusUnprocessableEntity
	case errors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// correlationOptions applies defaults and validates the enum fields
func correlationOptions(method, tail, policy string) (stats.Method, stats.TailType, stats.MissingPolicy, error) {
	m := stats.MethodPearson
	switch method {
	case "", string(stats.MethodPearson):
	case string(stats.MethodSpearman):
		m = stats.MethodSpearman
	default:
		return "", "", "", errors.InvalidInput("unknown method " + method)
	}

	t := stats.TailTwo
	switch tail {
	case "", string(stats.TailTwo):
	case string(stats.TailOne):
		t = stats.TailOne
	default:
		return "", "", "", errors.InvalidInput("unknown tail " + tail)
	}

	p := stats.MissingListwise
	switch policy {
	case "", string(stats.MissingListwise):
	case string(stats.MissingPairwise):
		p = stats.MissingPairwise
	default:
		return "", "", "", errors.InvalidInput("unknown missing-data policy " + policy)
	}
	return m, t, p, nil
}
