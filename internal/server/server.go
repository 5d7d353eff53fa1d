// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	_ "socialapi/docs" // swagger docs
	"socialapi/internal/bootstrap"
	"socialapi/internal/config"
	"socialapi/internal/middleware"
	"socialapi/internal/repository"
	"socialapi/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// pinger is the readiness view of the primary store.
type pinger interface {
	Ping(ctx context.Context) error
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	runtime        *bootstrap.Runtime
	store          pinger
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	limiter        *middleware.RateLimiter
	userRepo       repository.UserRepository
	thoughtRepo    repository.ThoughtRepository
	userService    *service.UserService
	thoughtService *service.ThoughtService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("runtime initialization failed: %w", err)
	}
	return NewServerWithDeps(cfg, rt)
}

// NewServerWithDeps creates a Server using an already-initialized runtime.
// Use this in tests or when the caller owns connection setup.
func NewServerWithDeps(cfg *config.Config, rt *bootstrap.Runtime) (*Server, error) {
	if rt == nil {
		return nil, fmt.Errorf("runtime is required")
	}

	server := &Server{
		config:      cfg,
		runtime:     rt,
		store:       rt,
		redis:       rt.Redis,
		limiter:     middleware.NewRateLimiter(rt.Redis, cfg.Env),
		userRepo:    rt.Users,
		thoughtRepo: rt.Thoughts,
	}
	if rt.Registry != nil {
		server.promMiddleware = fiberprometheus.NewWithRegistry(rt.Registry, "socialapi", "", "", nil)
	}
	server.userService = service.NewUserService(server.userRepo)
	server.thoughtService = service.NewThoughtService(server.thoughtRepo, server.userRepo)

	return server, nil
}

func (s *Server) userSvc() *service.UserService {
	if s.userService == nil {
		s.userService = service.NewUserService(s.userRepo)
	}
	return s.userService
}

func (s *Server) thoughtSvc() *service.ThoughtService {
	if s.thoughtService == nil {
		s.thoughtService = service.NewThoughtService(s.thoughtRepo, s.userRepo)
	}
	return s.thoughtService
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Propagate request and trace IDs into the user context
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
		MaxAge:       86400, // 24 hours
	}))

	maxRequests := s.config.RateLimitMax
	if maxRequests <= 0 {
		maxRequests = 100
	}
	window := time.Duration(s.config.RateLimitWindowSeconds) * time.Second
	if window <= 0 {
		window = time.Minute
	}
	app.Use(limiter.New(limiter.Config{
		Max:        maxRequests,
		Expiration: window,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Social API Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// User routes
	users := api.Group("/users")
	users.Get("/", s.GetUsers)
	users.Post("/", s.rateLimit("create_user", 20, 10*time.Minute), s.CreateUser)
	// Define specific /:userId/friends routes BEFORE generic /:id route
	users.Post("/:userId/friends/:friendId", s.rateLimit("add_friend", 30, time.Minute), s.AddFriend)
	users.Get("/:id", s.GetUser)
	users.Put("/:id", s.UpdateUser)

	// Thought routes
	thoughts := api.Group("/thoughts")
	thoughts.Get("/", s.GetThoughts)
	thoughts.Post("/", s.rateLimit("create_thought", 10, time.Minute), s.CreateThought)
	thoughts.Post("/:thoughtId/reactions", s.rateLimit("create_reaction", 30, time.Minute), s.AddReaction)
	thoughts.Get("/:id", s.GetThought)
	thoughts.Put("/:id", s.UpdateThought)
}

func (s *Server) rateLimit(name string, limit int, window time.Duration) fiber.Handler {
	if s.limiter == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return s.limiter.Limit(name, limit, window)
}

// HealthCheck is a simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/live [get]
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: a
// server started without it reports "disabled" and stays ready.
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ready [get]
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.store == nil {
		dbStatus = "unavailable"
	} else if err := s.store.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Social API",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown releases the store and cache connections. The Fiber app is shut
// down by its owner first.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.runtime != nil {
		s.runtime.Close(ctx)
	}
	middleware.Logger.Info("Server shutdown complete")
	return nil
}
