// Package api exposes the analytics read models over HTTP for the dashboard.
package api

import (
	"context"
	"sync/atomic"

	"github.com/aiseo/brand-visibility/internal/analytics"
	"github.com/aiseo/brand-visibility/internal/search"
	"github.com/aiseo/brand-visibility/internal/storage"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reporter is the reporting surface used by the trigger and metrics routes
type Reporter interface {
	RunReport(ctx context.Context) error
	GetMetrics() string
}

// Server holds the handlers' dependencies
type Server struct {
	facade         *analytics.Facade
	store          storage.RecordStore
	reporter       Reporter
	maxPerCategory int
	index          atomic.Pointer[search.Index]
}

// NewServer creates the API server. reporter may be nil, which disables
// /metrics and /trigger.
func NewServer(facade *analytics.Facade, store storage.RecordStore, reporter Reporter, maxPerCategory int) *Server {
	s := &Server{
		facade:         facade,
		store:          store,
		reporter:       reporter,
		maxPerCategory: maxPerCategory,
	}
	s.resetIndex()
	return s
}

// resetIndex swaps in a fresh lazily built search index
func (s *Server) resetIndex() {
	s.index.Store(s.facade.NewSearchIndex())
}

// Router builds the HTTP routes
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(instrument)

	router.HandleFunc("/health", s.healthCheckHandler).Methods("GET")
	router.HandleFunc("/api/health", s.healthCheckHandler).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/brands", s.listBrandsHandler).Methods("GET")
	api.HandleFunc("/brands", s.createBrandHandler).Methods("POST")
	api.HandleFunc("/brands/{id}", s.brandHandler).Methods("GET")
	api.HandleFunc("/prompts", s.listPromptsHandler).Methods("GET")
	api.HandleFunc("/prompts/{id}", s.promptDetailHandler).Methods("GET")
	api.HandleFunc("/prompts/{id}/runs/{n}", s.promptRunHandler).Methods("GET")
	api.HandleFunc("/sources", s.listSourcesHandler).Methods("GET")
	api.HandleFunc("/search", s.searchHandler).Methods("GET")
	api.HandleFunc("/metrics", s.dashboardHandler).Methods("GET")
	api.HandleFunc("/visibility", s.timelineHandler).Methods("GET")

	router.Handle("/metrics/prometheus", promhttp.Handler()).Methods("GET")
	if s.reporter != nil {
		router.HandleFunc("/metrics", s.metricsHandler).Methods("GET")
		router.HandleFunc("/trigger", s.triggerHandler).Methods("POST")
	}

	return router
}
