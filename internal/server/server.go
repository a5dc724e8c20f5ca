// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "shelftalk/docs" // swagger docs
	"shelftalk/internal/cache"
	"shelftalk/internal/config"
	"shelftalk/internal/database"
	"shelftalk/internal/middleware"
	"shelftalk/internal/models"
	"shelftalk/internal/notifications"
	"shelftalk/internal/repository"
	"shelftalk/internal/service"

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
	config            *config.Config
	db                *gorm.DB
	redis             *redis.Client
	app               *fiber.App
	promMiddleware    *fiberprometheus.FiberPrometheus
	shutdownCtx       context.Context
	shutdownFn        context.CancelFunc
	userRepo          repository.UserRepository
	chatRepo          repository.ChatRepository
	bookRepo          repository.BookRepository
	reportRepo        repository.ReportRepository
	notifier          *notifications.Notifier
	chatHub           *notifications.ChatHub
	chatService       *service.ChatService
	userService       *service.UserService
	bookService       *service.BookService
	moderationService *service.ModerationService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	bookRepo := repository.NewBookRepository(db)
	reportRepo := repository.NewReportRepository(db)

	prom := middleware.InitMetrics("shelftalk-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		chatRepo:       chatRepo,
		bookRepo:       bookRepo,
		reportRepo:     reportRepo,
		chatHub:        notifications.NewChatHub(),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	server.chatService = service.NewChatService(chatRepo, userRepo, server.chatHub, server.chatNotifier())
	server.userService = service.NewUserService(userRepo, cfg.UsernameCooldownDays, cfg.ReauthWindowMinutes)
	server.bookService = service.NewBookService(bookRepo)
	server.moderationService = service.NewModerationService(userRepo, reportRepo)

	return server, nil
}

// chatNotifier returns the notifier as a service.ChatNotifier, keeping the
// interface value nil when Redis is unavailable.
func (s *Server) chatNotifier() service.ChatNotifier {
	if s.notifier == nil {
		return nil
	}
	return s.notifier
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Request tracing
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

	// CORS middleware runs before middlewares that can short-circuit (e.g.
	// limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
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
		Title: "ShelfTalk Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", middleware.AuthRequired, s.Refresh)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Delete("/me", s.DeleteMyAccount)
	// Specific /:id/:resource routes before the generic /:id route
	users.Get("/:id/books", s.GetUserShelf)
	users.Post("/:id/report", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "report_user"), s.ReportUser)
	users.Get("/:id", s.GetUserProfile)

	// Bookshelf routes
	books := protected.Group("/books")
	books.Post("/", s.AddBook)
	books.Get("/", s.GetMyShelf)
	books.Get("/:id/reviews", s.GetReviews)
	books.Post("/:id/reviews", middleware.RateLimit(
		s.redis, 5, time.Minute, "create_review"), s.AddReview)
	books.Put("/:id/shelf", s.MoveBook)
	books.Delete("/:id", s.RemoveBook)

	// Conversation routes. Conversations are addressed by the other
	// participant; the canonical conversation ID is derived server-side.
	conversations := protected.Group("/conversations")
	conversations.Get("/", s.GetConversations)
	conversations.Get("/with/:userId/messages", s.GetMessages)
	conversations.Post("/with/:userId/messages", middleware.RateLimit(
		s.redis, 15, time.Minute, "send_chat"), s.SendMessage)
	conversations.Post("/with/:userId/read", s.MarkConversationRead)
	conversations.Get("/with/:userId/unread", s.GetUnreadCount)

	// Websocket endpoint
	api.Get("/ws/chat", middleware.WebSocketAuthRequired, s.WebSocketChatHandler())

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/reports", s.ListReports)
	admin.Get("/reports/user/:id", s.ListReportsForUser)
	admin.Post("/users/:id/ban", s.BanUser)
	admin.Post("/users/:id/unban", s.UnbanUser)
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
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
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "ShelfTalk",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
// The role comes from the user table, never from a token claim.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := currentUserID(c)

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		}
		if user == nil || !user.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewPermissionError("Admin access required"))
		}

		return c.Next()
	}
}

// bootstrapAdmin promotes the configured bootstrap admin account, if it
// exists. Safe to run on every start.
func (s *Server) bootstrapAdmin(ctx context.Context) {
	if s.config.AdminEmail == "" {
		return
	}
	if err := s.userRepo.PromoteAdminByEmail(ctx, s.config.AdminEmail); err != nil {
		log.Printf("bootstrap admin promotion failed: %v", err)
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "ShelfTalk API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	s.bootstrapAdmin(ctx)

	// Wire the chat hub to the Redis subscriber if available
	if s.notifier != nil {
		go func() {
			if err := s.chatHub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.chatHub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if err := s.chatHub.Shutdown(ctx); err != nil {
		log.Printf("error shutting down %s: %v", s.chatHub.Name(), err)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
