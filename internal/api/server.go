// Package api provides the HTTP API server and handlers for shelfsocial.
package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"

	"github.com/shelfsocial/shelfsocial-server/internal/http/response"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures cross-cutting HTTP behavior.
type Options struct {
	AllowedOrigins []string
	// RateLimitPerMinute caps all requests per client IP; zero disables it.
	RateLimitPerMinute int
	// AuthRateLimitPerMinute caps register and login attempts per client IP.
	AuthRateLimitPerMinute int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           Pinger
	services        *Services
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *RateLimiter
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(store Pinger, services *Services, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		store:    store,
		services: services,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	if opts.AuthRateLimitPerMinute > 0 {
		s.authRateLimiter = NewRateLimiter(opts.AuthRateLimitPerMinute, time.Minute, opts.AuthRateLimitPerMinute)
	}

	s.setupMiddleware(opts)

	s.api = humachi.New(s.router, NewHumaConfig())
	RegisterErrorHandler(logger)

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources.
func (s *Server) Close() {
	if s.authRateLimiter != nil {
		s.authRateLimiter.Stop()
	}
}

// NewHumaConfig returns the huma configuration: goccy JSON, bearer auth
// scheme and the response envelope.
func NewHumaConfig() huma.Config {
	config := huma.DefaultConfig("Shelfsocial API", "1.0.0")
	config.Info.Description = "Social book catalog: books, reviews, reading status, follows, likes and comments."

	format := huma.Format{
		Marshal: func(w io.Writer, v any) error {
			return json.NewEncoder(w).Encode(v)
		},
		Unmarshal: json.Unmarshal,
	}
	config.Formats = map[string]huma.Format{
		"application/json": format,
		"json":             format,
	}
	config.DefaultFormat = "application/json"

	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	config.Transformers = append(config.Transformers, EnvelopeTransformer)

	return config
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(recoverer(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(s.globalRateLimit(opts.RateLimitPerMinute))
	if s.services != nil && s.services.Auth != nil {
		s.router.Use(s.authMiddleware(s.services.Auth))
	}

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, "method not allowed", s.logger)
	})
}

// registerRoutes registers every API operation.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerReviewRoutes()
	s.registerReadingStatusRoutes()
	s.registerFollowRoutes()
	s.registerEngagementRoutes()
	s.registerUserRoutes()
}

// bearerAuth marks an operation as requiring a bearer token.
var bearerAuth = []map[string][]string{{"bearer": {}}}
