package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"socialize/internal/config"
	"socialize/internal/credentials"
	"socialize/internal/handlers"
	"socialize/internal/logging"
	"socialize/internal/metrics"
	"socialize/internal/middleware"
	"socialize/internal/models"
	"socialize/internal/repositories"
	"socialize/internal/services"
	"socialize/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	// --- Initialize RabbitMQ Client ---
	// An empty RABBITMQ_URL runs the service without a broker.
	var publisher services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			log.Error("failed to initialize RabbitMQ client", "error", err)
			os.Exit(1)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
		publisher = mqClient
	} else {
		log.Warn("RABBITMQ_URL is empty, user events will not be published")
	}

	app, userService, err := NewApp(cfg, log, publisher)
	if err != nil {
		log.Error("failed to create app", "error", err)
		os.Exit(1)
	}

	// --- Start RabbitMQ Consumer ---
	if mqClient != nil {
		err := mqClient.ConsumePresenceEvents(func(msg rabbitmq.PresenceMessage) error {
			return userService.SetActive(msg.UserID, msg.Active)
		})
		if err != nil {
			log.Error("failed to start presence consumer", "error", err)
		}
	}

	// --- Start HTTP Server ---
	log.Info("starting server", "port", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Error("server failed to start", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Info("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during Fiber shutdown", "error", err)
	}
	log.Info("server gracefully stopped")
}

// NewApp opens the database, wires repositories, services and handlers, and
// returns the Fiber app together with the user service. publisher may be nil.
func NewApp(cfg config.Config, log *slog.Logger, publisher services.EventPublisher) (*fiber.App, *services.UserService, error) {
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.AutoMigrate(&models.User{}, &models.Post{}); err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	creds, err := credentials.New(cfg.PasswordScheme, cfg.BcryptCost)
	if err != nil {
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)

	// --- Initialize Services ---
	opts := []services.Option{
		services.WithLogger(log),
		services.WithMetrics(metrics.New(registry)),
	}
	if publisher != nil {
		opts = append(opts, services.WithPublisher(publisher))
	}
	userService := services.NewUserService(userRepo, creds, cfg.JWTSecret, opts...)
	postService := services.NewPostService(postRepo, userRepo)

	// --- Initialize Handlers ---
	userHandler := handlers.NewUserHandler(userService, log)
	postHandler := handlers.NewPostHandler(postService, log)

	app := fiber.New()
	app.Use(logger.New()) // Request logger

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		code := fiber.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			status = "unhealthy"
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"rabbitmq": publisher != nil,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	apiV1 := app.Group("/api/v1")
	userHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(userService, log))
	userHandler.RegisterProtectedRoutes(protectedRoutes)
	postHandler.RegisterRoutes(protectedRoutes)

	return app, userService, nil
}

func openDatabase(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
