package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Harshitk-cp/causalchain/internal/api/handlers"
	mw "github.com/Harshitk-cp/causalchain/internal/api/middleware"
	"github.com/Harshitk-cp/causalchain/internal/buildconfig"
	"github.com/Harshitk-cp/causalchain/internal/cache"
	"github.com/Harshitk-cp/causalchain/internal/config"
	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/Harshitk-cp/causalchain/internal/metrics"
	"github.com/Harshitk-cp/causalchain/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const limiterCleanupInterval = 10 * time.Minute

// App holds the router and background services for lifecycle management.
type App struct {
	Router     *chi.Mux
	Causal     *service.CausalService
	Statistics *service.StatisticsService
	Metrics    *metrics.Collector

	chains      *cache.Cache[*domain.CausalChain]
	viz         *cache.Cache[*domain.VisualizationData]
	limiter     *mw.RateLimiter
	stopCh      chan struct{}
	unsubscribe []func()
	startTime   time.Time
}

func NewApp(causalSvc *service.CausalService, logger *zap.Logger) (*App, error) {
	chains, err := cache.New[*domain.CausalChain]("chains", config.CacheSize(), logger)
	if err != nil {
		return nil, fmt.Errorf("chain cache: %w", err)
	}
	viz, err := cache.New[*domain.VisualizationData]("visualization", config.CacheSize(), logger)
	if err != nil {
		return nil, fmt.Errorf("visualization cache: %w", err)
	}

	collector := metrics.NewCollector()
	md := causalSvc.Metadata(context.Background())
	collector.Nodes.Set(float64(md.NodeCount))
	collector.Edges.Set(float64(md.EdgeCount))
	collector.ObserveCache("chains", chains.Stats)
	collector.ObserveCache("visualization", viz.Stats)

	statsSvc := service.NewStatisticsService(causalSvc, logger)
	statsSvc.SetInterval(config.StatsInterval())

	app := &App{
		Causal:     causalSvc,
		Statistics: statsSvc,
		Metrics:    collector,
		chains:     chains,
		viz:        viz,
		limiter:    mw.NewRateLimiter(config.RateLimitRPS(), config.RateLimitBurst()),
		stopCh:     make(chan struct{}),
		startTime:  time.Now(),
	}
	app.unsubscribe = []func(){
		causalSvc.Subscribe(chains.PurgeOnMutation),
		causalSvc.Subscribe(viz.PurgeOnMutation),
		causalSvc.Subscribe(collector.ObserveEvent),
	}

	// Handlers
	nodeHandler := handlers.NewNodeHandler(causalSvc)
	edgeHandler := handlers.NewEdgeHandler(causalSvc)
	taskHandler := handlers.NewTaskHandler(causalSvc)
	reasoningHandler := handlers.NewReasoningHandler(causalSvc, chains, viz, logger)
	graphHandler := handlers.NewGraphHandler(causalSvc)

	r := chi.NewRouter()
	app.Router = r

	// Global middleware (order matters)
	r.Use(mw.Tracing)             // Server span
	r.Use(mw.RequestID)           // Generate/extract request ID
	r.Use(middleware.RealIP)      // Extract real IP
	r.Use(mw.Metrics(collector))  // Collect metrics
	r.Use(mw.Logging(logger))     // Log all requests
	r.Use(middleware.Recoverer)   // Recover from panics
	r.Use(app.limiter.Middleware) // Rate limiting

	// Health and metrics (no auth)
	r.Get("/health", app.healthHandler())
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", nodeHandler.Create)
			r.Get("/", nodeHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", nodeHandler.GetByID)
				r.Patch("/", nodeHandler.Update)
				r.Get("/trace", reasoningHandler.Trace)
				r.Post("/what-if", reasoningHandler.WhatIf)
				r.Get("/risk", reasoningHandler.Risk)
				r.Get("/visualization", reasoningHandler.Visualization)
			})
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", edgeHandler.Create)
			r.Get("/", edgeHandler.List)
		})

		r.Post("/tasks", taskHandler.Sync)
		r.Post("/queries", reasoningHandler.Query)

		r.Route("/graph", func(r chi.Router) {
			r.Get("/metadata", graphHandler.Metadata)
			r.Get("/statistics", graphHandler.Statistics)
		})
	})

	return app, nil
}

// Start launches the background workers.
func (app *App) Start() {
	app.Statistics.Start()
	go app.limiter.RunCleanup(limiterCleanupInterval, app.stopCh)
}

// Stop halts the background workers and detaches the app's listeners.
func (app *App) Stop() {
	app.Statistics.Stop()
	close(app.stopCh)
	for _, unsub := range app.unsubscribe {
		unsub()
	}
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		md := app.Causal.Metadata(r.Context())

		response := map[string]any{
			"status":         "ok",
			"build":          buildconfig.VersionInfo(),
			"uptime_seconds": time.Since(app.startTime).Seconds(),
			"nodes":          md.NodeCount,
			"edges":          md.EdgeCount,
			"caches": map[string]cache.Stats{
				"chains":        app.chains.Stats(),
				"visualization": app.viz.Stats(),
			},
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
