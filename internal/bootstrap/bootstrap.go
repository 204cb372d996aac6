package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/coursebooking/internal/app/controllers"
	"github.com/yigit/coursebooking/internal/app/models/dto"
	appMigrations "github.com/yigit/coursebooking/internal/app/migrations"
	appRepos "github.com/yigit/coursebooking/internal/app/repositories"
	appRoutes "github.com/yigit/coursebooking/internal/app/routes"
	appServices "github.com/yigit/coursebooking/internal/app/services"
	"github.com/yigit/coursebooking/internal/config"
	"github.com/yigit/coursebooking/internal/db"
	appMiddleware "github.com/yigit/coursebooking/internal/middleware"
	pkgAuth "github.com/yigit/coursebooking/internal/pkg/auth"
	"github.com/yigit/coursebooking/internal/pkg/email"
	"github.com/yigit/coursebooking/internal/pkg/filestorage"
	"github.com/yigit/coursebooking/internal/pkg/logger"
	"github.com/yigit/coursebooking/internal/pkg/mq"
	"github.com/yigit/coursebooking/internal/pkg/websocket"
	"github.com/yigit/coursebooking/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store               appRepos.Store
	Outbox              *filestorage.LocalStorage
	Publisher           mq.Publisher
	Hub                 *websocket.Hub
	NotificationService appServices.NotificationService
	CourseService       appServices.CourseService
	BookingService      appServices.BookingService
	AdminService        appServices.AdminService // nil when the operator API is disabled
	JWTService          *pkgAuth.JWTService
	Controllers         appRoutes.Controllers
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore opens the configured store, applies migrations and seeds the
// default courses.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appRepos.Store, error) {
	var store appRepos.Store

	switch cfg.Storage.Driver {
	case "memory":
		lgr.Info().Msg("Using in-memory store")
		store = appRepos.NewMemoryStore()

	default:
		lgr.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(ctx, cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}
		lgr.Info().Msg("Database connection successfully established.")

		migrationsDir := cfg.Storage.MigrationsPath
		if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
			database.Close()
			lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
			return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
		}

		lgr.Info().Msg("Running database migrations...")
		migrator := appMigrations.NewMigrator(database.Pool, lgr)
		if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
			database.Close()
			lgr.Error().Err(err).Msg("Database migration error")
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")

		store = appRepos.NewPostgresStore(database)
	}

	seedCtx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout)
	defer cancel()
	if err := seed.CreateDefaultData(seedCtx, store, cfg.Storage.ResetOnStart, lgr); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

func setupPublisher(cfg *config.Config, lgr zerolog.Logger) mq.Publisher {
	if cfg.RabbitMQ.URL == "" {
		return mq.NopPublisher{}
	}

	publisher, err := mq.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		lgr.Warn().Err(err).Msg("RabbitMQ unavailable, booking events will not be published")
		return mq.NopPublisher{}
	}
	lgr.Info().Str("exchange", cfg.RabbitMQ.Exchange).Msg("Booking events enabled")
	return publisher
}

// BuildDependencies initializes services and controllers on top of store.
func BuildDependencies(cfg *config.Config, store appRepos.Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: store, Logger: lgr}

	var err error
	deps.Outbox, err = filestorage.NewLocalStorage(cfg.Mail.OutboxDir)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize outbox")
		return nil, fmt.Errorf("failed to initialize outbox: %w", err)
	}

	if !cfg.Mail.TransportConfigured() {
		lgr.Warn().Str("outbox", deps.Outbox.BasePath()).Msg("SMTP host not set, emails will be written to the outbox")
	}
	sender := email.NewSMTPSender(email.SMTPConfig{
		Host:      cfg.Mail.Host,
		Port:      cfg.Mail.Port,
		Username:  cfg.Mail.Username,
		Password:  cfg.Mail.Password,
		FromName:  cfg.Mail.FromName,
		FromEmail: cfg.Mail.FromEmail,
		Timeout:   cfg.Mail.Timeout,
	}, logger.Component("smtp"))

	deps.NotificationService = appServices.NewNotificationService(
		cfg.Mail,
		sender,
		deps.Outbox,
		seed.DefaultSchedule(),
		logger.Component("notifications"),
	)

	deps.Publisher = setupPublisher(cfg, lgr)
	deps.Hub = websocket.NewHub(logger.Component("live"))

	deps.CourseService = appServices.NewCourseService(store, cfg.Storage.Timeout)
	deps.BookingService = appServices.NewBookingService(
		store,
		deps.NotificationService,
		deps.Publisher,
		deps.Hub,
		appServices.BookingServiceConfig{
			StoreTimeout:     cfg.Storage.Timeout,
			ConfirmationWait: cfg.Mail.ConfirmationWait,
		},
		logger.Component("booking"),
	)

	snapshot := func(ctx context.Context) (any, error) {
		courses, err := deps.CourseService.ListCourses(ctx)
		if err != nil {
			return nil, err
		}
		return dto.NewCourseListResponse(courses), nil
	}

	deps.Controllers = appRoutes.Controllers{
		Course:  appControllers.NewCourseController(deps.CourseService, lgr),
		Booking: appControllers.NewBookingController(deps.BookingService, lgr),
		Health:  appControllers.NewHealthController(store, cfg.Storage.Timeout, lgr),
		Live:    websocket.NewHandler(deps.Hub, snapshot, logger.Component("live")),
	}

	if cfg.Admin.Enabled() {
		cost, err := pkgAuth.ValidatePasswordHash(cfg.Admin.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("admin: %w", err)
		}
		if cost < pkgAuth.OperatorHashCost {
			lgr.Warn().Int("cost", cost).Msg("Operator password hash uses a low bcrypt cost")
		}
		deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
			SecretKey:      cfg.Admin.JWTSecret,
			AccessTokenExp: cfg.Admin.TokenTTL,
			TokenIssuer:    cfg.Admin.Issuer,
		})
		deps.AdminService = appServices.NewAdminService(
			cfg.Admin,
			deps.JWTService,
			deps.Outbox,
			deps.NotificationService,
			logger.Component("admin"),
		)
		deps.Controllers.Admin = appControllers.NewAdminController(deps.AdminService, lgr)
		deps.Controllers.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
		lgr.Info().Str("username", cfg.Admin.Username).Msg("Operator API enabled")
	}

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

	appMiddleware.UseJSONFieldNames()

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.ErrorHandler(),
	)

	appRoutes.SetupRouter(router, deps.Controllers)

	return router
}
