package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/campusmeet/backend/internal/app/controllers"
	appMigrations "github.com/campusmeet/backend/internal/app/migrations"
	appRepos "github.com/campusmeet/backend/internal/app/repositories"
	appRoutes "github.com/campusmeet/backend/internal/app/routes"
	appServices "github.com/campusmeet/backend/internal/app/services"
	"github.com/campusmeet/backend/internal/config"
	"github.com/campusmeet/backend/internal/db"
	"github.com/campusmeet/backend/internal/events"
	appMiddleware "github.com/campusmeet/backend/internal/middleware"
	pkgAuth "github.com/campusmeet/backend/internal/pkg/auth"
	"github.com/campusmeet/backend/internal/pkg/helpers"
	"github.com/campusmeet/backend/internal/pkg/logger"
	"github.com/campusmeet/backend/internal/pkg/portal"
	"github.com/campusmeet/backend/internal/pkg/websocket"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService       appServices.AuthService
	MembershipService appServices.MembershipService
	ChatService       appServices.ChatService
	AuthController    *appControllers.AuthController
	MeetupController  *appControllers.MeetupController
	ChatController    *appControllers.ChatController
	WsHandler         *websocket.Handler
	AuthMiddleware    *appMiddleware.AuthMiddleware
	Repos             *appRepos.Repositories
	JWTService        *pkgAuth.JWTService
	PortalClient      portal.Client
	Router            *events.Router
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")
	return dbPool, nil
}

// BuildDependencies initializes repositories, services, controllers and the
// event router.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)
	deps.Router = events.NewRouter(lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenExp:    helpers.ParseDuration(cfg.JWT.TokenExpiration, 24*time.Hour),
		TokenIssuer: cfg.JWT.Issuer,
	})

	deps.PortalClient = portal.NewHTTPClient(portal.Config{
		LoginURL:   cfg.Portal.LoginURL,
		ProfileURL: cfg.Portal.ProfileURL,
		Timeout:    helpers.ParseDuration(cfg.Portal.Timeout, 10*time.Second),
	})

	deps.AuthService = appServices.NewAuthService(
		deps.PortalClient,
		deps.Repos.UserRepository,
		deps.JWTService,
		lgr,
	)
	deps.MembershipService = appServices.NewMembershipService(
		deps.Repos.UserRepository,
		deps.Repos.MeetupRepository,
		deps.Repos.ChatRepository,
		deps.Router,
		deps.JWTService,
		lgr,
	)
	deps.ChatService = appServices.NewChatService(
		deps.Repos.UserRepository,
		deps.Repos.MeetupRepository,
		deps.Repos.ChatRepository,
		deps.Router,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.MeetupController = appControllers.NewMeetupController(deps.MembershipService)
	deps.ChatController = appControllers.NewChatController(deps.ChatService)
	deps.WsHandler = websocket.NewHandler(deps.Router, deps.ChatService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.MeetupController,
		deps.ChatController,
		deps.WsHandler,
		deps.AuthMiddleware,
	)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
