// Package server contains the HTTP handlers for the application's routes.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"kulan/internal/cache"
	"kulan/internal/config"
	"kulan/internal/database"
	"kulan/internal/middleware"
	"kulan/internal/models"
	"kulan/internal/repository"
	"kulan/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SessionCookieName is the cookie that carries the session token for
// browser clients. API clients may send the same token as a Bearer header.
const SessionCookieName = "kulan_session"

const sessionTTL = 7 * 24 * time.Hour

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	chatRepo       repository.ChatRepository
	reportRepo     repository.ReportRepository
	userService    *service.UserService
	postService    *service.PostService
	chatService    *service.ChatService
	adminService   *service.AdminService
}

// NewServer creates a new server instance and establishes its own
// database and Redis connections from the config.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and a miniredis client.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	reportRepo := repository.NewReportRepository(db)

	prom := middleware.InitMetrics("kulan-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		chatRepo:       chatRepo,
		reportRepo:     reportRepo,
	}
	server.userService = service.NewUserService(userRepo)
	server.postService = service.NewPostService(postRepo, commentRepo)
	server.chatService = service.NewChatService(chatRepo, userRepo)
	server.adminService = service.NewAdminService(userRepo, postRepo, commentRepo, chatRepo, reportRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// Pages and uploads are served same-origin from this server.
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' data:; media-src 'self'",
	}))

	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:" + s.config.Port
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
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

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Form endpoints used by the HTML pages
	app.Post("/register", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "register"), s.Register)
	app.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Get("/logout", s.AuthRequired(), s.Logout)
	app.Post("/create-post", s.AuthRequired(), s.CreatePost)

	// Static uploads
	app.Static("/uploads", s.config.UploadDir)

	api := app.Group("/api", s.AuthRequired())

	api.Get("/user-info", s.GetUserInfo)

	api.Get("/posts", s.GetPosts)
	api.Post("/posts/:id/like", s.ToggleLike)
	api.Post("/posts/:id/comment", s.CreateComment)
	api.Get("/posts/:id/comments", s.GetComments)

	api.Get("/users", s.GetUsers)
	api.Get("/users/search", s.SearchUsers)
	api.Put("/profile", s.UpdateProfile)
	api.Put("/profile/password", s.UpdatePassword)

	api.Get("/chats", s.GetChats)
	api.Post("/chats", s.GetOrCreateChat)
	api.Get("/chats/:id/messages", s.GetMessages)
	api.Post("/chats/:id/messages", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_chat"), s.SendMessage)

	api.Post("/reports", s.CreateReport)
	api.Get("/messages", s.GetNotices)

	admin := api.Group("/admin", s.AdminRequired())
	admin.Get("/stats", s.GetAdminStats)
	admin.Get("/users", s.GetAdminUsers)
	admin.Post("/users/:id/block", s.ToggleBlockUser)
	admin.Delete("/users/:id", s.DeleteUser)
	admin.Get("/reports", s.GetAdminReports)
	admin.Put("/reports/:id/status", s.UpdateReportStatus)
	admin.Post("/messages", s.CreateNotice)

	// HTML pages; the parameterized route must come last.
	app.Get("/", s.Index)
	app.Get("/:page", s.ServePage)
}

// HealthCheck reports database and Redis health.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
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
		// The app degrades gracefully without Redis.
		redisStatus = "unavailable"
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

// AuthRequired returns middleware that resolves the session token from the
// session cookie or the Authorization header. Unauthenticated API requests
// get a 401 JSON body; unauthenticated page requests are redirected to the
// login page.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, reason := s.resolveSession(c)
		if reason != "" {
			return s.rejectUnauthenticated(c, reason)
		}

		c.Locals("userID", userID)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// resolveSession extracts the session token from the cookie or the
// Authorization header and fully validates it. It returns the user ID on
// success, or a non-empty rejection reason. Both the enforcing middleware
// and the index page use this, so the two paths cannot drift.
func (s *Server) resolveSession(c *fiber.Ctx) (uint, string) {
	tokenString := c.Cookies(SessionCookieName)
	if tokenString == "" {
		authHeader := c.Get("Authorization")
		if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		return 0, "Authorization required"
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.SessionSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "Invalid or expired session"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "Invalid session claims"
	}
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "kulan-api" {
		return 0, "Invalid session issuer"
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "kulan-client" {
		return 0, "Invalid session audience"
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, "Invalid subject claim"
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, "Invalid user ID in session"
	}

	if jti, exists := claims["jti"].(string); exists && jti != "" {
		if cache.IsSessionRevoked(c.Context(), jti) {
			return 0, "Session has been revoked"
		}
	}

	return uint(userID), ""
}

// sessionUserID resolves the session like AuthRequired does but does not
// enforce it. The index page uses this to decide between the feed and a
// redirect to login.
func (s *Server) sessionUserID(c *fiber.Ctx) (uint, bool) {
	userID, reason := s.resolveSession(c)
	return userID, reason == ""
}

// rejectUnauthenticated answers API requests with a 401 JSON body and
// browser page requests with a redirect to the login page.
func (s *Server) rejectUnauthenticated(c *fiber.Ctx, message string) error {
	if strings.HasPrefix(c.Path(), "/api") {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError(message))
	}
	if c.Method() == fiber.MethodGet && c.Accepts("text/html") != "" {
		return c.Redirect("/login.html", fiber.StatusSeeOther)
	}
	return models.RespondWithError(c, fiber.StatusUnauthorized,
		models.NewUnauthorizedError(message))
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// The admin flag is re-read from the database on every request so that a
// demotion takes effect immediately, not at next login.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		var user models.User
		if err := s.db.WithContext(c.Context()).Select("is_admin").First(&user, userID).Error; err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		if !user.IsAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}

		return c.Next()
	}
}

// Start starts the HTTP server and blocks until it exits.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Kulan",
		BodyLimit: s.config.MaxUploadMB * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{
					Error: fe.Message,
					Code:  "HTTP_ERROR",
				})
			}
			middleware.Logger.Error("unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server and closes its connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
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
