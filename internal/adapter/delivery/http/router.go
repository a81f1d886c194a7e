// Package http provides the HTTP delivery layer for the phishing detection service.
// This package contains the HTTP handlers and related types used for processing
// incoming requests, validating input, and formatting responses.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/phishing-detector/docs"
	"github.com/vadimbarashkov/phishing-detector/pkg/middleware/recoverer"
)

const defaultMaxUploadBytes = 10 << 20

type routerOptions struct {
	allowedOrigins []string
	metricsPath    string
	metrics        http.Handler
	maxUploadBytes int64
}

type Option func(*routerOptions)

// WithAllowedOrigins sets the CORS allowed origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(o *routerOptions) {
		o.allowedOrigins = origins
	}
}

// WithMetrics mounts a metrics handler at path.
func WithMetrics(path string, h http.Handler) Option {
	return func(o *routerOptions) {
		o.metricsPath = path
		o.metrics = h
	}
}

// WithMaxUploadBytes limits the size of CSV uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(o *routerOptions) {
		o.maxUploadBytes = n
	}
}

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the phishing detection API.
func NewRouter(logger *httplog.Logger, useCase analysisUseCase, opts ...Option) *chi.Mux {
	o := routerOptions{
		allowedOrigins: []string{"*"},
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   o.allowedOrigins,
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		if _, err := w.Write(docs.Swagger); err != nil {
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		}
	})

	if o.metrics != nil {
		r.Method(http.MethodGet, o.metricsPath, o.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		validate := validator.New()
		h := newAnalysisHandler(useCase, validate, o.maxUploadBytes)

		r.Get("/ping", handlePing)
		r.Get("/health", h.health)
		r.Get("/statistics", h.statistics)
		r.Get("/recent-analyses", h.recentAnalyses)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))

			r.Post("/analyze", h.analyze)
			r.Post("/analyze-batch", h.analyzeBatch)
		})

		r.Post("/analyze-csv", h.analyzeCSV)
	})

	return r
}
