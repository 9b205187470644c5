package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "inkwell/docs" // swagger docs
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/events"
	"inkwell/internal/featureflags"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/repository"
	"inkwell/internal/service"

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
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	notifier       *notifications.Notifier
	publisher      events.Publisher
	featureFlags   *featureflags.Manager

	userService     *service.UserService
	authService     *service.AuthService
	blogService     *service.BlogService
	postService     *service.PostService
	commentService  *service.CommentService
	reactionService *service.ReactionService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient, NewPublisher(cfg, redisClient))
}

// NewPublisher fans reaction events out to Kafka and Redis pub/sub, whichever are configured.
func NewPublisher(cfg *config.Config, rdb *redis.Client) events.Publisher {
	var sinks events.Multi
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		sinks = append(sinks, events.NewKafkaPublisher(brokers, cfg.KafkaReactionsTopic))
	}
	if rdb != nil {
		sinks = append(sinks, events.NewRedisPublisher(notifications.NewNotifier(rdb)))
	}
	if len(sinks) == 0 {
		return events.Noop{}
	}
	return events.NewAsync(sinks, 0, 0)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
// A nil publisher disables reaction events.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, publisher events.Publisher) (*Server, error) {
	middleware.InitMiddleware(cfg)

	userRepo := repository.NewUserRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	if publisher == nil {
		publisher = events.Noop{}
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("inkwell-api"),
		publisher:      publisher,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	server.userService = service.NewUserService(userRepo)
	server.authService = service.NewAuthService(userRepo, server.userService, cfg.JWTSecret, cfg.AccessTokenTTL)
	server.blogService = service.NewBlogService(blogRepo, userRepo)
	server.postService = service.NewPostService(postRepo, server.blogService, server.featureFlags)
	server.commentService = service.NewCommentService(commentRepo, server.postService, server.blogService)
	server.reactionService = service.NewReactionService(postRepo, commentRepo, service.ReactionOptions{
		Mode:       cfg.ReactionConcurrency,
		MaxRetries: cfg.ReactionMaxRetries,
		Publisher:  publisher,
		Flags:      server.featureFlags,
	})
	server.postService.OnDelete(server.reactionService.Forget)
	server.commentService.OnDelete(server.reactionService.Forget)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before the limiter so 429 responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Preflight requests are answered by CORS.
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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Inkwell Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/registration", middleware.RateLimit(
		s.redis, 5, 10*time.Second, "registration"), s.Registration)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 5, 10*time.Second, "login"), s.Login)
	auth.Get("/me", middleware.AuthRequired, s.Me)

	// Public blog routes
	blogs := api.Group("/blogs")
	blogs.Get("/", s.GetBlogs)
	blogs.Get("/:blogId/posts", middleware.OptionalAuth, s.GetBlogPosts)
	blogs.Get("/:id", s.GetBlog)

	// Public post routes; optional auth resolves myStatus
	posts := api.Group("/posts")
	posts.Get("/", middleware.OptionalAuth, s.GetPosts)
	posts.Get("/:postId/comments", middleware.OptionalAuth, s.GetPostComments)
	posts.Post("/:postId/comments", middleware.AuthRequired, s.CreateComment)
	posts.Put("/:postId/like-status", middleware.AuthRequired, s.SetPostLikeStatus)
	posts.Get("/:id", middleware.OptionalAuth, s.GetPost)

	// Comment routes
	comments := api.Group("/comments")
	comments.Put("/:commentId/like-status", middleware.AuthRequired, s.SetCommentLikeStatus)
	comments.Get("/:id", middleware.OptionalAuth, s.GetComment)
	comments.Put("/:id", middleware.AuthRequired, s.UpdateComment)
	comments.Delete("/:id", middleware.AuthRequired, s.DeleteComment)

	// Blogger routes
	blogger := api.Group("/blogger", middleware.AuthRequired)
	bloggerBlogs := blogger.Group("/blogs")
	bloggerBlogs.Get("/", s.GetMyBlogs)
	bloggerBlogs.Post("/", s.CreateBlog)
	bloggerBlogs.Post("/:blogId/posts", s.CreatePost)
	bloggerBlogs.Put("/:blogId/posts/:postId", s.UpdatePost)
	bloggerBlogs.Delete("/:blogId/posts/:postId", s.DeletePost)
	bloggerBlogs.Put("/:id", s.UpdateBlog)
	bloggerBlogs.Delete("/:id", s.DeleteBlog)
	bloggerUsers := blogger.Group("/users")
	bloggerUsers.Get("/blog/:id", s.GetBlogBannedUsers)
	bloggerUsers.Put("/:id/ban", s.BanUserForBlog)

	// Super-admin routes
	sa := api.Group("/sa", middleware.SuperAdmin())
	sa.Get("/users", s.GetUsers)
	sa.Post("/users", s.CreateUser)
	sa.Put("/users/:id/ban", s.BanUser)
	sa.Delete("/users/:id", s.DeleteUser)
	sa.Get("/blogs", s.GetAllBlogs)
	sa.Put("/blogs/:id/bind-with-user/:userId", s.BindBlogOwner)
	sa.Put("/blogs/:id/ban", s.BanBlog)
	sa.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional; the API
// degrades to uncached reads without it.
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
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Inkwell",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Inkwell API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	// Drain queued reaction events before the connections go away
	if err := s.publisher.Close(); err != nil {
		middleware.Logger.Error("error closing event publisher", slog.String("error", err.Error()))
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

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
