package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"learnhub/internal/clients"
	"learnhub/internal/config"
	"learnhub/internal/gateway"
	httpserver "learnhub/internal/http"
	"learnhub/internal/http/handlers"
	"learnhub/internal/http/middleware"
	"learnhub/internal/models"
	"learnhub/internal/password"
	redisstore "learnhub/internal/redis"
	"learnhub/internal/repository"
	"learnhub/internal/service"
	"learnhub/internal/ws"
	"learnhub/libs/db"
	libredis "learnhub/libs/redis"
)

// App wires learnhub dependencies.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	userRepo := repository.NewUserRepository(sqlDB)
	courseRepo := repository.NewCourseRepository(sqlDB)
	txRepo := repository.NewTransactionRepository(sqlDB)
	progressRepo := repository.NewProgressRepository(sqlDB)
	discountRepo := repository.NewDiscountRepository(sqlDB)
	gatewayRepo := repository.NewGatewayRepository(sqlDB)

	grantCache := redisstore.NewGrantCache(redisClient, cfg.GrantTTL())

	tokenService := service.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL())
	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(userRepo, hasher, tokenService, logger)

	accessService := service.NewAccessService(userRepo, courseRepo, txRepo, grantCache, logger)
	checkoutService := service.NewCheckoutService(txRepo, courseRepo, discountRepo, gatewayRepo, grantCache, logger)
	progressService := service.NewProgressService(accessService, courseRepo, progressRepo, logger)

	notifier := clients.NewNotifierClient(cfg.Notifier.BaseURL, logger)
	dashboardHub := ws.NewHub(0, logger)

	midtransWebhook := handlers.NewWebhookHandler(
		gateway.NewMidtransVerifier(gatewayRepo), checkoutService, notifier, dashboardHub, logger)
	tripayWebhook := handlers.NewWebhookHandler(
		gateway.NewTripayVerifier(gatewayRepo), checkoutService, notifier, dashboardHub, logger)
	progressHandler := handlers.NewProgressHandler(progressService, dashboardHub, logger)
	exportHandler := handlers.NewExportHandler(txRepo, logger)

	routes := httpserver.Routes{
		Signup:             handlers.NewSignupHandler(authService, logger),
		Login:              handlers.NewLoginHandler(authService, logger),
		Checkout:           handlers.NewCheckoutHandler(checkoutService, logger),
		MidtransWebhook:    midtransWebhook.ServeHTTP,
		TripayWebhook:      tripayWebhook.ServeHTTP,
		LessonStatus:       progressHandler.LessonStatus,
		MarkCompleted:      progressHandler.MarkCompleted,
		UpdateTimeSpent:    progressHandler.UpdateTimeSpent,
		CourseProgress:     progressHandler.CourseProgress,
		ExportTransactions: exportHandler.ServeHTTP,
		ActivateGateway:    handlers.NewActivateGatewayHandler(gatewayRepo, logger),
		Dashboard:          handlers.NewDashboardHandler(dashboardHub, logger),
		Health:             handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes,
		middleware.Auth(tokenService),
		middleware.RequireRole(models.RoleAdmin),
	)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
