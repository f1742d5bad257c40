package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medik/hospital-api/internal/config"
	"github.com/medik/hospital-api/internal/email"
	"github.com/medik/hospital-api/internal/handler"
	appointmentHandler "github.com/medik/hospital-api/internal/handler/appointment"
	userHandler "github.com/medik/hospital-api/internal/handler/user"
	"github.com/medik/hospital-api/internal/middleware"
	"github.com/medik/hospital-api/internal/repository/postgres"
	"github.com/medik/hospital-api/internal/router"
	appointmentService "github.com/medik/hospital-api/internal/service/appointment"
	authService "github.com/medik/hospital-api/internal/service/auth"
	userService "github.com/medik/hospital-api/internal/service/user"
	"github.com/medik/hospital-api/pkg/logger"
	"github.com/medik/hospital-api/pkg/messaging"
	redisBroker "github.com/medik/hospital-api/pkg/messaging/redis"
	"github.com/medik/hospital-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Server.LogLevel),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})
	// Route the global logger through the same writer so every package logs
	// in one format at one level.
	log.Logger = *appLogger.Zerolog()

	if err := validator.RegisterBindings(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Event broker is optional: without Redis the workflows still run, they
	// just stop publishing lifecycle events.
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisBroker.NewRedisBroker(redisBroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, appLogger.Zerolog())
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, lifecycle events disabled")
			broker = nil
		} else {
			defer broker.Close()
		}
	}

	var emailSvc email.Service
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(cfg.SMTP)
	}

	// Initialize services
	appointmentSvc := appointmentService.NewService(appointmentRepo, userRepo, emailSvc, broker)
	userSvc := userService.NewService(userRepo)
	authSvc := authService.NewService(userRepo, cfg.JWT)

	// Initialize middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	h := handler.NewHandler(db)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc, authMiddleware)
	userH := userHandler.NewHandler(userSvc)

	r := router.NewRouter(authMiddleware, appointmentH, userH, h, router.Config{
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORS:           middleware.DefaultCORSConfig(),
		MetricsPrefix:  "hospital_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
