package ui

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"saleslens/domain/table"
	"saleslens/internal"
	"saleslens/internal/config"
	"saleslens/internal/store"
)

// App is the HTTP application serving the audit API. It owns the store handle
// and the single current analysis table; the presentation layer serializes
// interactions, so an RWMutex is all the discipline the table needs.
type App struct {
	router *chi.Mux
	cfg    *config.Config
	store  *store.Store
	logger *internal.Logger

	mu       sync.RWMutex
	analysis *table.Table
}

// NewApp creates the application with its routes and middleware configured
func NewApp(cfg *config.Config, st *store.Store) *App {
	app := &App{
		router: chi.NewRouter(),
		cfg:    cfg,
		store:  st,
		logger: internal.DefaultLogger,
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

// Router exposes the configured handler for the HTTP server
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	// Ingestion and store access
	a.router.Post("/api/load", a.handleLoad)
	a.router.Get("/api/tables", a.handleListTables)
	a.router.Get("/api/tables/{name}", a.handleTablePreview)
	a.router.Post("/api/flatten", a.handleFlatten)

	// Data quality
	a.router.Get("/api/quality/report", a.handleQualityReport)

	// AI compliance
	a.router.Get("/api/compliance/bias", a.handleBias)
	a.router.Get("/api/compliance/sensitive", a.handleSensitive)
	a.router.Get("/api/compliance/lineage", a.handleLineage)
	a.router.Get("/api/compliance/risk", a.handleRisk)

	// AI readiness
	a.router.Get("/api/readiness/balance", a.handleClassBalance)
	a.router.Get("/api/readiness/metadata", a.handleMetadata)
	a.router.Get("/api/readiness/representativeness", a.handleRepresentativeness)
	a.router.Get("/api/readiness/correlations", a.handleCorrelations)
	a.router.Get("/api/readiness/model", a.handleModel)

	// Full audit export
	a.router.Get("/api/export", a.handleExport)
}

// setAnalysisTable swaps in a freshly flattened analysis table
func (a *App) setAnalysisTable(tbl *table.Table) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.analysis = tbl
}

// analysisTable returns the current analysis table, or nil if none was
// flattened yet
func (a *App) analysisTable() *table.Table {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.analysis
}
