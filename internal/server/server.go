// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"log/slog"
	"time"

	_ "litreview/docs" // swagger docs
	"litreview/internal/config"
	"litreview/internal/middleware"
	"litreview/internal/models"
	"litreview/internal/notifications"
	"litreview/internal/repository"
	"litreview/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultAllowedOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	ticketRepo repository.TicketRepository
	reviewRepo repository.ReviewRepository
	photoRepo  repository.PhotoRepository
	feedRepo   repository.FeedRepository

	notifier *notifications.Notifier
	hub      *notifications.Hub

	socialService *service.SocialService
	feedService   *service.FeedService
	ticketService *service.TicketService
	reviewService *service.ReviewService
	photoService  *service.PhotoService
}

// NewServer creates a Server using already-initialized dependencies. redisClient may be nil,
// in which case notifications are disabled and rate limits fail open.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("litreview-api"),
		userRepo:       repository.NewUserRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		ticketRepo:     repository.NewTicketRepository(db),
		reviewRepo:     repository.NewReviewRepository(db),
		photoRepo:      repository.NewPhotoRepository(db),
		feedRepo:       repository.NewFeedRepository(db),
	}

	var events service.EventPublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		events = s.notifier
	}

	s.socialService = service.NewSocialService(s.followRepo, s.userRepo, events)
	s.feedService = service.NewFeedService(s.feedRepo)
	s.ticketService = service.NewTicketService(s.ticketRepo, s.photoRepo)
	s.reviewService = service.NewReviewService(s.reviewRepo, s.ticketRepo, s.photoRepo, events)
	s.photoService = service.NewPhotoService(s.photoRepo, cfg)

	return s
}

// App builds the Fiber application with middleware and routes. It is safe to call once per Server.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "LitReview API",
		BodyLimit: int(s.config.MaxUploadSizeBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses still carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultAllowedOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
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

func (s *Server) writeLimit(name string) fiber.Handler {
	limit := s.config.RateLimitWrites
	if limit <= 0 {
		limit = 30
	}
	window := time.Duration(s.config.RateLimitWindowSeconds) * time.Second
	if window <= 0 {
		window = time.Minute
	}
	return middleware.RateLimit(s.redis, limit, window, name)
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static("/media", s.photoService.UploadDir(), fiber.Static{
		Browse: false,
		MaxAge: 3600,
	})

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Websocket upgrades authenticate through the query string
	ws := api.Group("/ws", middleware.WebSocketAuthRequired(s.config))
	ws.Get("/notifications", s.WebSocketNotificationsHandler())

	protected := api.Group("", middleware.AuthRequired(s.config))

	protected.Get("/feed", s.GetHomeFeed)
	protected.Get("/posts", s.GetUserFeed)

	users := protected.Group("/users")
	users.Get("/me", s.GetMe)
	users.Patch("/me", s.writeLimit("profile"), s.UpdateMe)
	users.Get("/", s.ListUsers)
	users.Get("/:username", s.GetUserProfile)

	follows := protected.Group("/follows")
	follows.Get("/following", s.GetFollowings)
	follows.Get("/followers", s.GetFollowers)
	follows.Post("/", s.writeLimit("follow"), s.Follow)
	follows.Post("/:id/block", s.writeLimit("block"), s.ToggleBlock)
	follows.Delete("/:id", s.Unfollow)

	tickets := protected.Group("/tickets")
	tickets.Post("/", s.writeLimit("create_ticket"), s.CreateTicket)
	// Specific routes before the generic /:id
	tickets.Post("/with-review", s.writeLimit("create_ticket"), s.CreateTicketWithReview)
	tickets.Post("/:id/reviews", s.writeLimit("create_review"), s.CreateReview)
	tickets.Get("/:id", s.GetTicket)
	tickets.Put("/:id", s.UpdateTicket)
	tickets.Delete("/:id", s.DeleteTicket)

	reviews := protected.Group("/reviews")
	reviews.Get("/:id", s.GetReview)
	reviews.Put("/:id", s.UpdateReview)
	reviews.Delete("/:id", s.DeleteReview)

	photos := protected.Group("/photos")
	photos.Post("/", s.writeLimit("upload_photo"), s.UploadPhoto)
	photos.Get("/:id", s.GetPhoto)
	photos.Delete("/:id", s.DeletePhoto)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires the notification hub and listens on the configured port. It blocks until the
// listener stops.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring",
					slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
