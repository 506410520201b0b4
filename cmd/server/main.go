package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"eventhub/config"
	_ "eventhub/docs"
	"eventhub/internal/adapters/auth"
	"eventhub/internal/adapters/email"
	"eventhub/internal/adapters/storage"
	"eventhub/internal/db"
	delivery "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/services"

	"golang.org/x/crypto/bcrypt"
)

const serviceTimeout = 10 * time.Second

// @title EventHub API
// @version 1.0
// @description Event management and registration service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	pool, err := db.Connect(cfg.DBUrl)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.RunMigrations(pool, cfg.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	// Repositories
	txManager := postgres.NewTxManager(pool)
	eventRepo := postgres.NewEventRepository(pool)
	imageRepo := postgres.NewEventImageRepository(pool)
	attendanceImageRepo := postgres.NewAttendanceImageRepository(pool)
	registrationRepo := postgres.NewRegistrationRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	// Adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokenCodec := auth.NewJWTCodec(cfg.JWTSecret)
	mailer, err := email.NewMailer(cfg.Mailer)
	if err != nil {
		logger.Error("failed to configure mailer", "err", err)
		os.Exit(1)
	}
	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Error("failed to configure object store", "err", err)
		os.Exit(1)
	}

	// Services
	imageService := services.NewImageService(objectStore, imageRepo, attendanceImageRepo)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, mailer)
	eventService := services.NewEventService(txManager, eventRepo, imageService, notificationService, serviceTimeout)
	registrationService := services.NewRegistrationService(txManager, eventRepo, registrationRepo, imageService)
	tokenExpiry := time.Duration(cfg.TokenExpiryMin) * time.Minute
	authService := services.NewAuthService(userRepo, hasher, tokenCodec, tokenExpiry)

	// HTTP
	router := delivery.NewRouter(
		tokenCodec,
		controllers.NewEventController(logger, eventService),
		controllers.NewRegistrationController(logger, registrationService),
		controllers.NewNotificationController(logger, notificationService),
		controllers.NewAuthController(logger, authService),
	)

	var allowedOrigins []string
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(allowedOrigins, router))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}
