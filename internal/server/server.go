// Package server exposes the GraphQL endpoint, its subscription socket and the
// REST image routes over fiber.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"postboard/internal/auth"
	"postboard/internal/cache"
	"postboard/internal/config"
	"postboard/internal/featureflags"
	"postboard/internal/graph"
	"postboard/internal/identity"
	"postboard/internal/media"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/notifications"
	"postboard/internal/observability"
	"postboard/internal/repository"
	"postboard/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/graph-gophers/graphql-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const (
	graphqlPath       = "/graphql"
	imageRateLimit    = 20
	imageRateWindow   = time.Minute
	globalRateLimit   = 100
	globalRateWindow  = time.Minute
	readinessDeadline = 5 * time.Second
)

// Deps are the connected dependencies a Server is built from.
type Deps struct {
	Store    *repository.Store
	Redis    *redis.Client
	Verifier identity.Verifier
	Media    media.Store
	// Registry receives the HTTP metrics; the default registerer is used when nil.
	Registry prometheus.Registerer
}

// Server holds all dependencies and provides handlers
type Server struct {
	config   *config.Config
	store    *repository.Store
	redis    *redis.Client
	verifier identity.Verifier
	app      *fiber.App
	prom     *fiberprometheus.FiberPrometheus
	schema   *graphql.Schema
	broker   *notifications.Broker
	hub      *notifications.Hub
	images   *service.ImageService
	flags    *featureflags.Manager

	shutdownCtx context.Context
	shutdownFn  context.CancelFunc
}

// NewServer wires the services, the GraphQL schema and the fiber app.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Verifier == nil {
		return nil, fmt.Errorf("server: store and verifier are required")
	}
	if deps.Media == nil {
		var err error
		if deps.Media, err = media.NewStore(nil); err != nil {
			return nil, err
		}
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	store := deps.Store
	posts := repository.NewCachedPostRepository(store.Posts, cacheFor(deps.Redis))
	hydrator := repository.NewHydrator(store.Accounts, posts)
	gate := auth.NewGate(deps.Verifier, store.Accounts)
	broker := notifications.NewBroker(0)

	resolver := graph.NewResolver(
		service.NewAccountService(store.Accounts, gate),
		service.NewPostService(posts, store.Comments, gate, hydrator, broker),
		service.NewCommentService(store.Comments, posts, gate, hydrator, broker),
		broker,
	)
	schema, err := graph.NewSchema(resolver, cfg.GraphQLMaxDepth)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:      cfg,
		store:       store,
		redis:       deps.Redis,
		verifier:    deps.Verifier,
		prom:        fiberprometheus.NewWithRegistry(registry, "postboard-api", "http", "", nil),
		schema:      schema,
		broker:      broker,
		hub:         notifications.NewHub(graphqlPath),
		images:      service.NewImageService(deps.Media),
		flags:       featureflags.NewManager(cfg.FeatureFlags),
		shutdownCtx: ctx,
		shutdownFn:  cancel,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "postboard",
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(s.app)
	s.SetupRoutes(s.app)
	return s, nil
}

func cacheFor(rdb *redis.Client) *cache.Cache {
	if rdb == nil {
		return nil
	}
	return cache.New(rdb)
}

func errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	observability.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(s.prom.Middleware)
	app.Use(helmet.New(helmet.Config{
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected browser requests still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, " + auth.HeaderName +
			", Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version, Sec-WebSocket-Protocol",
		MaxAge: 86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        globalRateLimit,
		Expiration: globalRateWindow,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
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
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	s.prom.RegisterAt(app, "/metrics")

	app.Post(graphqlPath, middleware.ForwardToken(), s.GraphQL)
	if s.flags.On(featureflags.Playground) {
		app.Get(graphqlPath, s.SubscriptionSocket(), s.Playground())
	} else {
		app.Get(graphqlPath, s.SubscriptionSocket())
	}

	requireToken := middleware.RequireToken(s.verifier)
	imageLimit := middleware.RateLimit(s.redis, middleware.RateLimitConfig{
		Resource: "images",
		Limit:    imageRateLimit,
		Window:   imageRateWindow,
		Policy:   middleware.FailOpen,
		Disabled: !s.config.IsProduction(),
	})

	app.Get("/rest", requireToken, s.Rest)
	app.Get("/feature-flags", requireToken, s.FeatureFlags)
	app.Post("/uploadimages", requireToken, imageLimit, s.UploadImages)
	app.Post("/removeimage", requireToken, imageLimit, s.RemoveImage)
}

// App returns the fiber app, for tests and embedding.
func (s *Server) App() *fiber.App {
	return s.app
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the entity store and Redis answer a ping.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessDeadline)
	defer cancel()

	storeStatus := "healthy"
	if err := s.store.Backend.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	// Only the store decides readiness.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if storeStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"store":         storeStatus,
			"store_backend": s.store.Backend.Name(),
			"redis":         redisStatus,
			"subscribers":   s.hub.Count(),
		},
		"time": time.Now(),
	})
}

// Start listens on the configured port until Shutdown.
func (s *Server) Start() error {
	observability.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown closes subscription sockets, stops accepting requests and closes
// the broker, then releases the store and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownFn()

	if err := s.hub.Shutdown(ctx); err != nil {
		observability.Logger.Error("error shutting down subscription hub", slog.String("error", err.Error()))
	}
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		observability.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
	}
	s.broker.Shutdown()

	if err := s.store.Backend.Close(ctx); err != nil {
		observability.Logger.Error("error closing entity store", slog.String("error", err.Error()))
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			observability.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	observability.Logger.Info("Server shutdown complete")
	return nil
}
