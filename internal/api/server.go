// Package api provides the HTTP API server and handlers for the Inkwell application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/inkwellapp/inkwell-server/internal/sse"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store            store.Store
	services         *Services
	media            *MediaServices
	sseManager       *sse.Manager
	sseHandler       *sse.Handler
	router           *chi.Mux
	api              huma.API
	logger           *slog.Logger
	authRateLimiter  *RateLimiter
	mediaRateLimiter *RateLimiter
}

// Options configures the API server.
type Options struct {
	Store      store.Store
	Services   *Services
	Media      *MediaServices
	SSEManager *sse.Manager
	Logger     *slog.Logger

	// AllowedOrigins for CORS. Empty allows all origins, for development.
	AllowedOrigins []string
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(opts Options) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Resolve Bearer tokens once, before routing. Handlers decide whether
	// authentication is required.
	router.Use(authMiddleware(opts.Services.Auth))

	humaConfig := huma.DefaultConfig("Inkwell API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:            opts.Store,
		services:         opts.Services,
		media:            opts.Media,
		sseManager:       opts.SSEManager,
		router:           router,
		api:              api,
		logger:           opts.Logger,
		authRateLimiter:  NewRateLimiter(20, time.Minute, 10),
		mediaRateLimiter: NewRateLimiter(600, time.Minute, 100),
	}

	if opts.SSEManager != nil {
		s.sseHandler = sse.NewHandler(opts.SSEManager, opts.Logger, func(r *http.Request) string {
			return OptionalUserID(r.Context())
		})
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerPostRoutes()
	s.registerTagRoutes()
	s.registerCommentRoutes()
	s.registerSocialRoutes()
	s.registerSearchRoutes()
	s.registerUploadRoutes()
	s.registerEventRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// registerEventRoutes wires the SSE stream. This is a raw chi route:
// huma's response pipeline buffers bodies and would break streaming.
func (s *Server) registerEventRoutes() {
	if s.sseHandler == nil {
		return
	}
	s.router.Get("/api/v1/events/stream", s.sseHandler.ServeHTTP)
}
