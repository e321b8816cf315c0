// Package app contains the application setup for the catalog service.
package app

import (
	"fmt"
	"net/http"

	"github.com/abgdnv/product-catalog/internal/config"
	"github.com/abgdnv/product-catalog/internal/platform/metrics"
	"github.com/abgdnv/product-catalog/internal/platform/web"
	"github.com/abgdnv/product-catalog/internal/product/handler"
	"github.com/abgdnv/product-catalog/internal/product/service"
	"github.com/abgdnv/product-catalog/internal/product/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ServiceName labels logs and metrics.
const ServiceName = "catalog"

type Dependencies struct {
	ProductService service.ProductService
	Store          store.ProductStore
	Logger         *zap.Logger
	Registry       *prometheus.Registry
	Metrics        *metrics.Metrics
}

// SetupDependencies wires the service on top of st and creates a fresh metrics registry.
func SetupDependencies(st store.ProductStore, logger *zap.Logger) *Dependencies {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Dependencies{
		ProductService: service.NewService(st),
		Store:          st,
		Logger:         logger,
		Registry:       reg,
		Metrics:        metrics.New(reg),
	}
}

// SetupHttpHandler initializes the routes and middleware of the catalog service.
// Used by E2E tests to run the application handler in an httptest.Server.
func SetupHttpHandler(deps *Dependencies, cfg *config.Config) http.Handler {
	pApi := handler.NewAPI(deps.ProductService, deps.Store, deps.Logger)

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(deps.Logger))
	mux.Use(web.Recoverer(deps.Logger))
	mux.Use(deps.Metrics.Middleware(ServiceName, metrics.ChiRoutePatternOrPath))

	mux.Route("/api/products", func(r chi.Router) {
		r.Post("/add-product", pApi.AddProduct)
		r.Get("/", pApi.GetAllProducts)
		r.Get("/{id}", pApi.GetProductByID)
	})

	mux.Get("/healthz", pApi.HealthCheck)
	mux.Get("/readyz", pApi.Readiness)

	if cfg.Metrics.Enabled {
		mux.With(metrics.BearerAuth(cfg.Metrics.Token)).
			Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	return mux
}

// SetupHttpServer creates and configures an HTTP server for the catalog service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps, cfg)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPServer.Port),
		Handler:           mux,
		ReadTimeout:       cfg.HTTPServer.Timeout.Read,
		WriteTimeout:      cfg.HTTPServer.Timeout.Write,
		IdleTimeout:       cfg.HTTPServer.Timeout.Idle,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.HTTPServer.MaxHeaderBytes,
	}
	return server
}
