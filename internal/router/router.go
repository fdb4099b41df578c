package router

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/handlers"
	"github.com/anonto42/inkwell/backend/internal/metrics"
	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/anonto42/inkwell/backend/internal/storage"
	"github.com/anonto42/inkwell/backend/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies are built once in main and injected into every handler.
type Dependencies struct {
	DB       *gorm.DB
	Services *services.Services
	// Verifier authenticates bearer tokens on /api/v1.
	Verifier auth.Verifier
	Issuer   *auth.JWTVerifier
	// Firebase is nil when firebase login is disabled.
	Firebase auth.Verifier
	Storage  storage.Storage
	Metrics  *metrics.Manager
}

// SetupMiddleware configures global Echo middleware, error handling and validation
func SetupMiddleware(e *echo.Echo, m *metrics.Manager) {
	e.HTTPErrorHandler = handlers.ErrorHandler(e)
	e.Validator = validators.NewValidator()

	e.Use(middleware.RequestMetrics(m))
	e.Use(middleware.RequestLogger())
	e.Use(middleware.PanicRecovery(m))
	e.Use(eMiddleware.CORS())
	log.Debug("Global middleware configured.")
}

// SetupRoutes migrates the schema and registers every route
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	if err := repositories.Migrate(deps.DB); err != nil {
		return errors.Wrap(err, "failed to auto migrate models")
	}
	log.Debug("Database migrations completed.")

	health := handlers.NewHealthHandler(deps.DB)
	e.GET("/health", health.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "inkwell api"})
	})

	svc := deps.Services
	blogHandler := handlers.NewBlogHandler(svc.Blogs)
	commentHandler := handlers.NewCommentHandler(svc.Comments)
	userHandler := handlers.NewUserHandler(svc.Users)
	followHandler := handlers.NewFollowHandler(svc.Users)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(svc.Users, deps.Issuer, deps.Firebase).RegisterAuthRoutes(authGroup)

	// --- Protected routes (require a valid bearer token) ---
	api := e.Group("/api/v1", middleware.RequireIdentity(deps.Verifier))
	blogHandler.RegisterBlogRoutes(api)
	handlers.NewLikeHandler(svc.Blogs).RegisterLikeRoutes(api)
	handlers.NewBookmarkHandler(svc.Blogs).RegisterBookmarkRoutes(api)
	handlers.NewFeedHandler(svc.Blogs).RegisterFeedRoutes(api)
	commentHandler.RegisterCommentRoutes(api)
	userHandler.RegisterUserRoutes(api)
	followHandler.RegisterFollowRoutes(api)
	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(api)

	// --- Reads open to anonymous viewers. Registered last so unmatched
	// paths under /api/v1 fall through to a plain 404. ---
	public := e.Group("/api/v1", middleware.OptionalIdentity(deps.Verifier))
	blogHandler.RegisterPublicBlogRoutes(public)
	commentHandler.RegisterPublicCommentRoutes(public)
	userHandler.RegisterPublicUserRoutes(public)
	followHandler.RegisterPublicFollowRoutes(public)
	if deps.Storage != nil {
		handlers.NewMediaHandler(deps.Storage).RegisterMediaRoutes(public)
	}

	log.Info("All routes configured.")
	return nil
}

// New builds a fully configured echo instance.
func New(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	SetupMiddleware(e, deps.Metrics)
	if err := SetupRoutes(e, deps); err != nil {
		return nil, err
	}
	return e, nil
}
