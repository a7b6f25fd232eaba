// Package api provides the HTTP API server and handlers for the Somnia dream journal.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/somniaapp/somnia-server/internal/config"
	"github.com/somniaapp/somnia-server/internal/media/images"
	"github.com/somniaapp/somnia-server/internal/ratelimit"
	"github.com/somniaapp/somnia-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Auth       *service.AuthService
	Dream      *service.DreamService
	Tag        *service.TagService
	Stats      *service.StatsService
	Social     *service.SocialService
	Profile    *service.ProfileService
	Attachment *service.AttachmentService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services        *Services
	avatars         *images.Storage
	router          *chi.Mux
	api             huma.API
	authRateLimiter *ratelimit.KeyedRateLimiter
	logger          *slog.Logger
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(cfg *config.Config, services *Services, avatars *images.Storage, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Server.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	humaConfig := huma.DefaultConfig("Somnia API", apiVersion)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		services: services,
		avatars:  avatars,
		router:   router,
		api:      api,
		// Auth endpoints are brute-force targets: 10 attempts per
		// minute per IP with a small burst.
		authRateLimiter: ratelimit.New(10.0/60.0, 5),
		logger:          logger,
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerDreamRoutes()
	s.registerTagRoutes()
	s.registerStatsRoutes()
	s.registerFeedRoutes()
	s.registerSocialRoutes()
	s.registerAttachmentRoutes()
	s.registerUserRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

// === Health ===

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string    `json:"status" doc:"Server status"`
	Time   time.Time `json:"time" doc:"Current server time"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status",
		Tags:        []string{"Health"},
	}, s.handleHealth)
}

func (s *Server) handleHealth(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	return &HealthOutput{
		Body: HealthResponse{
			Status: "healthy",
			Time:   time.Now(),
		},
	}, nil
}
