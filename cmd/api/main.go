package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumina-dashboard-api/internal/cache"
	"github.com/noah-isme/lumina-dashboard-api/internal/config"
	"github.com/noah-isme/lumina-dashboard-api/internal/database"
	"github.com/noah-isme/lumina-dashboard-api/internal/handler"
	"github.com/noah-isme/lumina-dashboard-api/internal/middleware"
	"github.com/noah-isme/lumina-dashboard-api/internal/models"
	"github.com/noah-isme/lumina-dashboard-api/internal/observability"
	"github.com/noah-isme/lumina-dashboard-api/internal/repository"
	"github.com/noah-isme/lumina-dashboard-api/internal/router"
	"github.com/noah-isme/lumina-dashboard-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "lumina-dashboard-api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Membership{},
		&models.Content{},
		&models.ContentActivity{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	bus, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if bus != nil {
		defer bus.Drain()
	}

	observability.RegisterMetrics()

	validate := validator.New(validator.WithRequiredStructEnabled())

	contentRepo := repository.NewContentRepository(db)
	activityRepo := repository.NewContentActivityRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)

	cacheCoordinator := cache.NewRedisCoordinator(redisClient, bus, cfg.InvalidationSubject, cfg.ContentsCacheTTL, logger)

	contentService := service.NewContentService(contentRepo, membershipRepo, cacheCoordinator, validate, logger)
	activityService := service.NewContentActivityService(activityRepo, logger)

	contentHandler := handler.NewContentHandler(contentService, activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	middleware.Register(app, middleware.Config{
		Logger:         &logger,
		AllowedOrigins: cfg.CORSAllowOrigins,
	})

	router.Register(app, cfg, router.Dependencies{
		ContentHandler:      contentHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		OrganizationContext: middleware.OrganizationContext(orgRepo, membershipRepo),
		MutationRateLimit:   middleware.RateLimit("content-mutations", cfg.MutationRateLimit, cfg.MutationRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("server started")

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
