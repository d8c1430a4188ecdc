package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"teleconsult/internal/core/ports"
	"teleconsult/internal/core/services"
	httphandlers "teleconsult/internal/handlers/http"
	"teleconsult/internal/infrastructure/email"
	"teleconsult/internal/infrastructure/middleware"
	"teleconsult/internal/infrastructure/monitoring"
	repositories "teleconsult/internal/infrastructure/repositories"
	signalrelay "teleconsult/internal/infrastructure/signal"
	"teleconsult/pkg/config"
	"teleconsult/pkg/logger"
	"teleconsult/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "1.0.0"

func main() {
	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/teleconsult/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	// Tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Repositories
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}

	userRepo := repoFactory.CreateUserRepository()
	appointmentRepo := repoFactory.CreateAppointmentRepository()
	messageRepo := repoFactory.CreateMessageRepository()
	notificationRepo := repoFactory.CreateNotificationRepository()

	// Email delivery is optional; without it notifications stay in-app only.
	var mailer ports.Mailer
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPMailer(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, log)
	}

	// Services
	authService := services.NewAuthService(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
		userRepo,
	)
	notifier := services.NewNotificationService(notificationRepo, userRepo, mailer, log)
	appointmentService := services.NewAppointmentService(appointmentRepo, userRepo, notifier)

	// Monitoring
	var metrics signalrelay.Metrics
	if cfg.Monitoring.PrometheusEnabled {
		metrics = monitoring.NewPrometheusCollector()
	}

	// Signaling relay
	relay := signalrelay.NewRelay(
		authService,
		appointmentService,
		messageRepo,
		notifier,
		metrics,
		signalrelay.Options{
			PingInterval: cfg.Signal.PingInterval,
			PongTimeout:  cfg.Signal.PongTimeout,
			WriteTimeout: cfg.Signal.WriteTimeout,
			RingTimeout:  cfg.Signal.RingTimeout,
			SendBuffer:   cfg.Signal.SendBuffer,
		},
		log,
	)

	// HTTP handlers
	authHandler := httphandlers.NewAuthHandler(authService, cfg.Auth.AccessTokenTTL)
	appointmentHandler := httphandlers.NewAppointmentHandler(appointmentService, authService)
	chatHandler := httphandlers.NewChatHandler(messageRepo, appointmentService, authService)
	notificationHandler := httphandlers.NewNotificationHandler(notificationRepo, authService)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.NewRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	authHandler.SetupRoutes(router)
	appointmentHandler.SetupRoutes(router)
	chatHandler.SetupRoutes(router)
	notificationHandler.SetupRoutes(router)

	// WebSocket endpoint: the relay authenticates the handshake itself so
	// browser clients can pass the token as a query parameter.
	router.GET("/ws", gin.WrapF(relay.HandleWebSocket))

	healthChecker := monitoring.NewHealthChecker(version)
	healthChecker.AddCheck("repositories", repoFactory.HealthCheck)
	router.GET("/health", healthChecker.Handler())
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ready",
			"online_users": relay.Presence().Count(),
			"active_calls": relay.Calls().Active(),
		})
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting TeleConsult server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("received shutdown signal", "signal", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("error force closing server", "error", closeErr)
		}
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error shutting down tracer", "error", err)
	}

	if err := repoFactory.Close(); err != nil {
		log.Errorw("error closing repository factory", "error", err)
	}

	log.Info("TeleConsult server stopped")
}
