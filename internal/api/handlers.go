package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aiseo/brand-visibility/internal/analytics"
	"github.com/aiseo/brand-visibility/internal/metrics"
	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/aiseo/brand-visibility/internal/search"
	"github.com/aiseo/brand-visibility/internal/storage"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

// writeError maps domain errors onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	var verr *storage.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, analytics.ErrInvalidWindow):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case analytics.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		logrus.Errorf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) window(r *http.Request) (models.Window, error) {
	return models.ParseRange(r.URL.Query().Get("range"), s.facade.Now())
}

func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) listBrandsHandler(w http.ResponseWriter, r *http.Request) {
	window, err := s.window(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	brands, err := s.facade.ListBrandsWithMetrics(window)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

func (s *Server) brandHandler(w http.ResponseWriter, r *http.Request) {
	window, err := s.window(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	bm, err := s.facade.BrandMetric(mux.Vars(r)["id"], window)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bm)
}

func (s *Server) createBrandHandler(w http.ResponseWriter, r *http.Request) {
	var spec storage.BrandSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	brand, err := s.store.CreateBrand(spec)
	if err != nil {
		writeError(w, err)
		return
	}

	s.resetIndex()
	writeJSON(w, http.StatusCreated, brand)
}

func (s *Server) listPromptsHandler(w http.ResponseWriter, r *http.Request) {
	prompts, err := s.facade.ListPromptsWithMetrics(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prompts)
}

func (s *Server) promptDetailHandler(w http.ResponseWriter, r *http.Request) {
	detail, err := s.facade.PromptDetail(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) promptRunHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	n, err := strconv.Atoi(vars["n"])
	if err != nil || n < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid run number %q", vars["n"])})
		return
	}

	detail, err := s.facade.PromptDetail(vars["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	run, ok := detail.RunAt(n - 1)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("prompt %s has %d runs", vars["id"], len(detail.Runs))})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) listSourcesHandler(w http.ResponseWriter, r *http.Request) {
	sources, err := s.facade.ListSources()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

type searchResponse struct {
	Query        string         `json:"query"`
	Groups       []search.Group `json:"groups"`
	TotalResults int            `json:"totalResults"`
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := s.maxPerCategory
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid limit %q", raw)})
			return
		}
		limit = n
	}

	results := s.index.Load().Search(query, limit)
	total := results.TotalResults()

	outcome := "hit"
	if total == 0 {
		outcome = "empty"
	}
	metrics.SearchQueries.WithLabelValues(outcome).Inc()

	writeJSON(w, http.StatusOK, searchResponse{Query: query, Groups: results.Groups, TotalResults: total})
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	window, err := s.window(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	dash, err := s.facade.Dashboard(window)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) timelineHandler(w http.ResponseWriter, r *http.Request) {
	window, err := s.window(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var bucket time.Duration
	if raw := r.URL.Query().Get("bucket"); raw != "" {
		bucket, err = time.ParseDuration(raw)
		if err != nil || bucket <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid bucket %q", raw)})
			return
		}
	}

	points, err := s.facade.VisibilityTimeline(window, bucket)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.reporter.GetMetrics()))
}

func (s *Server) triggerHandler(w http.ResponseWriter, r *http.Request) {
	go func() {
		if err := s.reporter.RunReport(context.Background()); err != nil {
			logrus.Errorf("Manual report trigger failed: %v", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Report triggered successfully"})
}
