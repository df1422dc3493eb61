package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/dolinear/dolinear-backend/internal/config"
	"github.com/dafibh/dolinear/dolinear-backend/internal/handler"
	"github.com/dafibh/dolinear/dolinear-backend/internal/middleware"
	"github.com/dafibh/dolinear/dolinear-backend/internal/repository/postgres"
	"github.com/dafibh/dolinear/dolinear-backend/internal/repository/storage"
	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title Dolinear API
// @version 1.0
// @description Issue tracking with workspaces, teams, workflow states and labels.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	ctx := context.Background()
	store, err := postgres.Open(ctx, postgres.PoolConfig{
		DatabaseURL:      cfg.DatabaseURL,
		MaxConns:         cfg.DBMaxConns,
		StatementTimeout: cfg.StatementTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer store.Close()
	log.Info().Int32("max_conns", cfg.DBMaxConns).Msg("Connected to database")

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Migrations applied")
	}

	repos := store.Repositories()

	// Attachment storage is optional
	var objects storage.ObjectRepository
	if cfg.S3.Enabled() {
		s3Repo, err := storage.NewS3ObjectRepository(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize attachment storage")
		}
		objects = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Attachment storage enabled")
	} else {
		log.Warn().Msg("S3_BUCKET not set, attachment endpoints will return 503")
	}

	// Initialize services
	authzService := service.NewAuthorizationService(repos.Workspaces, repos.Teams)
	userService := service.NewUserService(repos.Users)
	workspaceService := service.NewWorkspaceService(store, repos.Workspaces, repos.Users)
	teamService := service.NewTeamService(store, repos.Teams, repos.Workspaces)
	stateService := service.NewWorkflowStateService(store, repos.WorkflowStates, repos.Teams)
	labelService := service.NewLabelService(repos.Labels)
	issueService := service.NewIssueService(store, repos)
	commentService := service.NewCommentService(repos.Comments, repos.Issues)
	attachmentService := service.NewAttachmentService(repos.Attachments, repos.Issues, objects, cfg.S3.URLExpiry)
	if attachmentService.IsEnabled() {
		issueService.SetAttachmentPurger(attachmentService)
	}

	// Token validation: Auth0 when configured, local HS256 when a secret is set
	var validators []middleware.TokenValidator
	if cfg.UseAuth0() {
		auth0Validator, err := middleware.NewAuth0Validator(cfg.Auth0Domain, cfg.Auth0Audience)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Auth0 validator")
		}
		validators = append(validators, auth0Validator)
	}
	if cfg.JWTSecret != "" {
		validators = append(validators, middleware.NewHMACValidator(cfg.JWTSecret, middleware.TokenIssuer))
	}
	authMiddleware := middleware.NewAuthMiddleware(middleware.NewChainValidator(validators...), userService)

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// Initialize handlers
	guard := handler.NewGuard(authzService)
	handlers := handler.Handlers{
		Health:        handler.NewHealthHandler(store),
		User:          handler.NewUserHandler(userService),
		Workspace:     handler.NewWorkspaceHandler(workspaceService, guard),
		Team:          handler.NewTeamHandler(teamService, guard),
		WorkflowState: handler.NewWorkflowStateHandler(stateService, guard),
		Label:         handler.NewLabelHandler(labelService, guard),
		Issue:         handler.NewIssueHandler(issueService, guard),
		Comment:       handler.NewCommentHandler(commentService, guard),
		Attachment:    handler.NewAttachmentHandler(attachmentService, guard),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Multipart uploads carry at most one 5MB image
	e.Use(echomiddleware.BodyLimit("6M"))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	handler.RegisterRoutes(e, authMiddleware, rateLimiter, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Str("user_id", middleware.GetUserID(c).String()).
				Msg("request")

			return nil
		}
	}
}
