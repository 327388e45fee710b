// Package server contains the HTTP handlers and route wiring for the API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *auth.SessionManager
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	engRepo        repository.EngagementRepository
	userService    *service.UserService
	postService    *service.PostService
	engService     *service.EngagementService
	imageService   *service.ImageService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	var store service.ObjectStore
	if cfg.MinioEndpoint != "" {
		minioStore, err := service.NewMinioStore(cfg)
		if err != nil {
			return nil, fmt.Errorf("object store connection failed: %w", err)
		}
		store = minioStore
	} else {
		middleware.Logger.Warn("MINIO_ENDPOINT not set, image upload disabled")
	}

	return NewServerWithDeps(cfg, db, redisClient, store), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store service.ObjectStore) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	engRepo := repository.NewEngagementRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: fiberprometheus.New("inkwell-api"),
		sessions:       auth.NewSessionManager(cfg.JWTSecret),
		userRepo:       userRepo,
		postRepo:       postRepo,
		engRepo:        engRepo,
	}
	server.userService = service.NewUserService(userRepo, engRepo)
	server.postService = service.NewPostService(postRepo, userRepo, engRepo)
	server.engService = service.NewEngagementService(engRepo)
	server.imageService = service.NewImageService(store, cfg)

	return server
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// OpenTelemetry span per request (no-op tracer unless tracing is enabled)
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	// Credentialed CORS: the session cookie must survive cross-origin calls
	// from the frontend dev server.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Session issuance
	app.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	app.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Post("/logout", s.Logout)

	// Public reads
	app.Post("/article", s.GetArticle)
	app.Post("/authorprofile", s.GetAuthorProfile)

	// Everything below requires a valid session cookie
	protected := app.Group("", s.AuthRequired())

	protected.Get("/user-profile", s.GetMyProfile)
	protected.Get("/explore", s.Explore)
	protected.Get("/myposts", s.GetMyPosts)
	protected.Get("/likedposts", s.GetLikedPosts)
	protected.Get("/savedposts", s.GetSavedPosts)
	protected.Get("/profiles", s.GetProfiles)

	protected.Post("/postarticle", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	protected.Post("/editprofile", s.EditProfile)
	protected.Post("/upload-image", middleware.RateLimit(
		s.redis, 10, time.Minute, "upload_image"), s.UploadImage)

	protected.Post("/handle-post-like", s.HandlePostLike)
	protected.Post("/handle-post-save", s.HandlePostSave)
	protected.Post("/handle-post-comment", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.HandlePostComment)
	protected.Post("/handle-comment-like", s.HandleCommentLike)
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
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
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
		// Cache is optional; its absence degrades but does not fail readiness.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
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

// AuthRequired returns middleware that resolves the session cookie to a user
// ID or rejects the request with an opaque 401.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := s.sessions.Verify(c.Cookies(auth.CookieName))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		c.Locals("userID", userID)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// currentUserID returns the authenticated user ID set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	uid, _ := c.Locals("userID").(uint)
	return uid
}

// mapServiceError translates an application error into an HTTP status.
// Internal detail is logged here and never serialized into responses.
func mapServiceError(c *fiber.Ctx, err error) int {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "NOT_FOUND":
			return fiber.StatusNotFound
		case "VALIDATION_ERROR", "CONFLICT":
			return fiber.StatusBadRequest
		case "UNAUTHORIZED":
			return fiber.StatusUnauthorized
		}
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled service error",
		slog.String("error", err.Error()))
	return fiber.StatusInternalServerError
}
