// Package server contains the HTTP handlers and wiring for the API.
package server

import (
	"context"
	"fmt"
	"time"

	"chronicle/internal/cache"
	"chronicle/internal/config"
	"chronicle/internal/database"
	"chronicle/internal/middleware"
	"chronicle/internal/models"
	"chronicle/internal/observability"
	"chronicle/internal/repository"
	"chronicle/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
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
	store          cache.Store
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository

	postService     *service.PostService
	commentService  *service.CommentService
	categoryService *service.CategoryService
	tagService      *service.TagService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisClient = cache.Connect(cfg.RedisURL)
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests and bootstrap layers use this to inject their own DB and Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		store:          newStore(cfg, redisClient),
		promMiddleware: middleware.InitMetrics("chronicle-api"),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		categoryRepo:   repository.NewCategoryRepository(db),
		tagRepo:        repository.NewTagRepository(db),
	}

	server.postService = service.NewPostService(
		server.postRepo, server.categoryRepo, server.tagRepo, server.store, server.isAdminByUserID)
	server.commentService = service.NewCommentService(
		server.commentRepo, server.postRepo, server.store, server.isAdminByUserID)
	server.categoryService = service.NewCategoryService(
		server.categoryRepo, server.store, server.isAdminByUserID)
	server.tagService = service.NewTagService(server.tagRepo, server.isAdminByUserID)

	return server, nil
}

// newStore selects the cache backend. A requested Redis backend that cannot
// connect degrades to the in-process store rather than running uncached.
func newStore(cfg *config.Config, redisClient *redis.Client) cache.Store {
	switch cfg.CacheBackend {
	case "off":
		return cache.Nop{}
	case "redis":
		if redisClient != nil {
			return cache.NewRedis(redisClient)
		}
		observability.Logger.Warn("redis unavailable, falling back to in-process cache")
		return cache.NewMemory()
	default:
		return cache.NewMemory()
	}
}

// SetupMiddleware wires the global middleware chain in dependency order.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS runs before anything that can short-circuit, so browser clients
	// still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limit, per IP. Preflight requests are never limited.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
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

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Public post routes. Specific paths go before /:id so they are not
	// swallowed by the parameter route.
	posts := api.Group("/posts", middleware.OptionalAuth)
	posts.Get("/", s.GetPosts)
	posts.Get("/lightweight", s.GetLightweightPosts)
	posts.Get("/latest", s.GetLatestNews)
	posts.Get("/trending", s.GetTrendingPosts)
	posts.Get("/featured", s.GetFeaturedPosts)
	posts.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchPosts)
	posts.Get("/slug/:slug", s.GetPostBySlug)
	posts.Get("/category/:name", s.GetPostsByCategory)
	posts.Get("/:id/comments", s.GetPostComments)
	posts.Get("/:id", s.GetPost)

	// Public category and tag routes
	categories := api.Group("/categories")
	categories.Get("/", s.GetCategories)
	categories.Get("/digest", s.GetCategoriesDigest)
	categories.Get("/:id", s.GetCategory)

	tags := api.Group("/tags")
	tags.Get("/", s.GetTags)
	tags.Get("/:name/posts", s.GetPostsByTag)
	tags.Get("/:id", s.GetTag)

	api.Get("/comments/:id", s.GetComment)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	protected.Get("/posts/mine", s.GetMyPosts)
	protected.Post("/posts", s.CreatePost)
	protected.Put("/posts/:id", s.UpdatePost)
	protected.Delete("/posts/:id", s.DeletePost)
	protected.Post("/posts/:id/like", s.LikePost)
	protected.Delete("/posts/:id/like", s.UnlikePost)
	protected.Put("/posts/:id/featured", s.SetPostFeatured)
	protected.Put("/posts/:id/latest-news", s.SetPostLatestNews)

	protected.Post("/posts/:id/comments", s.CreateComment)
	protected.Put("/comments/:id", s.UpdateComment)
	protected.Delete("/comments/:id", s.DeleteComment)

	protected.Post("/categories", s.CreateCategory)
	protected.Put("/categories/:id", s.UpdateCategory)
	protected.Delete("/categories/:id", s.DeleteCategory)

	protected.Post("/tags", s.CreateTag)
	protected.Delete("/tags/:id", s.DeleteTag)
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

	// Redis is optional: the in-process store keeps serving without it.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Chronicle API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			observability.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	observability.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if mem, ok := s.store.(*cache.Memory); ok {
		mem.Close()
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			observability.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			observability.Logger.Error("error closing redis", "error", rerr)
		}
	}

	observability.Logger.Info("server shutdown complete")
	return nil
}

func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	return s.userRepo.IsAdmin(ctx, userID)
}
