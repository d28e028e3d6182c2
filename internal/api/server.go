// Package api provides the HTTP API server and handlers for Bookly.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookly/bookly-server/internal/ratelimit"
	"github.com/bookly/bookly-server/internal/search"
	"github.com/bookly/bookly-server/internal/service"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the business logic used by the handlers.
type Services struct {
	Auth   *service.AuthService
	User   *service.UserService
	Book   *service.BookService
	Review *service.ReviewService
	Tag    *service.TagService
	// Search is optional; health reports it as degraded when nil.
	Search *search.SearchIndex
}

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins []string
	// AuthRateLimit is the number of requests per minute per IP allowed on /api/v1/auth. Zero disables it.
	AuthRateLimit int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	health   Pinger
	router   *chi.Mux
	api      huma.API
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, health Pinger, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		services: services,
		health:   health,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	s.setupMiddleware(opts)
	s.setupAPI()
	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for the OpenAPI document.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by middleware.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(recoverer(s.logger))

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if opts.AuthRateLimit > 0 {
		s.limiter = ratelimit.PerMinute(opts.AuthRateLimit)
		s.router.Use(RateLimitMiddleware(s.limiter, "/api/v1/auth/", s.logger))
	}
}

func (s *Server) setupAPI() {
	humaConfig := huma.DefaultConfig("Bookly API", Version)
	humaConfig.Info.Description = "Book review service: accounts, books, reviews and tags."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerReviewRoutes()
	s.registerTagRoutes()
	s.registerUserRoutes()
}

// bearer marks an operation as requiring a token.
var bearer = []map[string][]string{{"bearer": {}}}
