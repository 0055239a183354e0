package apiserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/infrastructure/config"
	"github.com/nutrismart/planner/internal/infrastructure/http/handlers"
	"github.com/nutrismart/planner/internal/infrastructure/http/middleware"
	"github.com/nutrismart/planner/internal/infrastructure/monitoring"
	"github.com/nutrismart/planner/internal/ports/inbound"
	"github.com/nutrismart/planner/pkg/healthcheck"
)

// Services are the use cases exposed over HTTP
type Services struct {
	Profiles    inbound.ProfileService
	Plans       inbound.PlanService
	Grocery     inbound.GroceryService
	Progress    inbound.ProgressService
	Suggestions inbound.SuggestionService
	Chat        inbound.ChatService
	Auth        inbound.AuthService
}

// Server is the JSON API HTTP server
type Server struct {
	config      *config.Config
	logger      *zap.Logger
	server      *http.Server
	router      *chi.Mux
	services    Services
	validator   handlers.Validator
	metrics     *monitoring.MetricsCollector
	health      *healthcheck.HealthCheck
	rateLimiter *middleware.RateLimiter
	openAPI     *OpenAPIHandler
}

// NewServer creates the API server and its routes
func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	services Services,
	validator handlers.Validator,
	metrics *monitoring.MetricsCollector,
	health *healthcheck.HealthCheck,
) (*Server, error) {
	openAPI, err := NewOpenAPIHandler(log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:    cfg,
		logger:    log.Named("api-server"),
		services:  services,
		validator: validator,
		metrics:   metrics,
		health:    health,
		openAPI:   openAPI,
	}
	if cfg.RateLimit.Enable {
		s.rateLimiter = middleware.NewRateLimiter(
			cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize, cfg.RateLimit.IdleTimeout, log)
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:           cfg.ServerAddr(),
		Handler:        otelhttp.NewHandler(s.router, "nutrismart-api"),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return s, nil
}

// setupRoutes configures operational and API routes
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware)
	}
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}

	r.Get("/health", s.health.Handler())
	r.Get("/health/live", s.health.LivenessHandler())
	r.Get("/health/ready", s.health.ReadinessHandler())
	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if s.rateLimiter != nil {
			r.Use(s.rateLimiter.Middleware)
		}
		r.Use(chimiddleware.Timeout(s.requestTimeout()))
		r.Use(chimiddleware.Compress(5))
		r.Use(middleware.MaxBodyBytes(s.config.Server.MaxBodyBytes))
		r.Use(middleware.JSONOnly())

		r.Get("/openapi.yaml", s.openAPI.ServeOpenAPISpec)
		r.Get("/openapi.json", s.openAPI.ServeOpenAPIJSON)
		s.setupAPIV1Routes(r)
	})

	return r
}

// setupAPIV1Routes configures API v1 endpoints. Everything except signing
// in and out needs a session token.
func (s *Server) setupAPIV1Routes(r chi.Router) {
	var metrics handlers.DomainMetrics = handlers.NopMetrics()
	if s.metrics != nil {
		metrics = s.metrics
	}

	profileH := handlers.NewProfileHandlers(s.services.Profiles, s.validator, s.logger)
	planH := handlers.NewPlanHandlers(s.services.Plans, s.services.Grocery, s.validator, metrics, s.logger)
	groceryH := handlers.NewGroceryHandlers(s.services.Grocery, s.validator, s.logger)
	progressH := handlers.NewProgressHandlers(s.services.Progress, metrics, s.logger)
	suggestionH := handlers.NewSuggestionHandlers(s.services.Suggestions, s.validator, s.logger)
	chatH := handlers.NewChatHandlers(s.services.Chat, s.validator, metrics, s.logger)
	authH := handlers.NewAuthHandlers(s.services.Auth, s.validator, s.logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/google", authH.Google)
		r.Post("/logout", authH.Logout)
		r.With(middleware.RequireSession(s.services.Auth, s.logger)).Get("/me", authH.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(s.services.Auth, s.logger))

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", profileH.List)
			r.Post("/", profileH.Create)
			r.Get("/active", profileH.Active)
			r.Put("/active", profileH.SetActive)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", profileH.Get)
				r.Put("/", profileH.Update)
				r.Delete("/", profileH.Delete)

				r.Get("/progress", progressH.History)
				r.Put("/progress", progressH.Record)
				r.Get("/progress/summary", progressH.Summary)
				r.Delete("/progress/{date}", progressH.Remove)
			})
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", planH.List)
			r.Post("/", planH.Generate)
			r.Get("/{userId}", planH.Get)
			r.Delete("/{userId}", planH.Delete)
			r.Post("/{userId}/grocery", planH.GroceryList)
		})

		r.Route("/grocery", func(r chi.Router) {
			r.Get("/", groceryH.List)
			r.Post("/", groceryH.Add)
			r.Delete("/", groceryH.Clear)
			r.Patch("/{id}/toggle", groceryH.Toggle)
			r.Delete("/{id}", groceryH.Remove)
		})

		r.Route("/suggestions", func(r chi.Router) {
			r.Get("/protein", suggestionH.ProteinSources)
			r.Get("/baby-food", suggestionH.BabyFood)
			r.Post("/ingredients", suggestionH.MealIdeas)
		})

		r.Route("/chat/messages", func(r chi.Router) {
			r.Get("/", chatH.Messages)
			r.Post("/", chatH.Send)
			r.Delete("/", chatH.Clear)
		})
	})
}

// requestTimeout leaves room for a model call inside the write timeout
func (s *Server) requestTimeout() time.Duration {
	timeout := s.config.AI.Timeout + 5*time.Second
	if wt := s.config.Server.WriteTimeout; wt > 0 && timeout >= wt {
		timeout = wt - time.Second
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return timeout
}

// Start serves until Shutdown; idle rate limit buckets are swept meanwhile
func (s *Server) Start(ctx context.Context) error {
	if s.rateLimiter != nil {
		go s.rateLimiter.Run(ctx)
	}

	s.logger.Info("Starting NutriSmart API server", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Handler returns the instrumented root handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Server returns the underlying HTTP server instance
func (s *Server) Server() *http.Server {
	return s.server
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.server.Shutdown(ctx)
}
