package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/tendant/simple-social/pkg/simplesocial"
)

// RouterOptions configures NewRouter. The zero value is usable.
type RouterOptions struct {
	Logger *slog.Logger
	// Metrics enables the metrics middleware and GET /metrics when set
	Metrics        *PrometheusMetrics
	AllowedOrigins []string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// HealthResponse is the response body for GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewRouter builds the HTTP API around svc
func NewRouter(svc simplesocial.Service, opts RouterOptions) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	if opts.Metrics != nil {
		r.Use(MetricsMiddleware(opts.Metrics))
	}
	r.Use(RecoveryMiddleware(logger))
	r.Use(CORSMiddleware(opts.AllowedOrigins, nil, nil))
	if opts.MaxBodyBytes > 0 {
		r.Use(RequestSizeLimitMiddleware(opts.MaxBodyBytes))
	}
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderNotFound(w, r, "The requested resource was not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, http.StatusMethodNotAllowed, ErrorResponse{
			Error:   CodeMethodNotAllowed,
			Message: "The requested method is not allowed for this resource",
		})
	})

	r.Get("/health", Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Mount("/api/posts", NewPostHandler(svc).Routes())

	return r
}

// Health is the liveness probe; it does not touch the store
func Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:  "healthy",
		Message: "API is running successfully",
	})
}
