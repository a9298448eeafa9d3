package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/priorart-academy/challenge-service/internal/cache"
	"github.com/priorart-academy/challenge-service/internal/config"
	"github.com/priorart-academy/challenge-service/internal/events"
	"github.com/priorart-academy/challenge-service/internal/handlers"
	"github.com/priorart-academy/challenge-service/internal/repositories/postgres"
	"github.com/priorart-academy/challenge-service/internal/services"
	"github.com/priorart-academy/challenge-service/internal/utils"
	"github.com/priorart-academy/challenge-service/internal/validator"
	"github.com/priorart-academy/challenge-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "development" {
		logger = utils.NewDevelopmentLogger()
	} else {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	cacheService := cache.NewRedisCache(redisClient, slogLogger)

	eventPublisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.Error("Failed to create event publisher, falling back to mock", "error", err)
		eventPublisher = events.NewMockEventPublisher(slogLogger)
	}

	repo := postgres.NewRepository(db)
	v := validator.New()

	serviceManager := services.NewServiceManager(repo, cacheService, eventPublisher, slogLogger, v)
	handlerManager := handlers.NewHandlerManager(serviceManager, v, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting challenge service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	if err := eventPublisher.Close(); err != nil {
		logger.Error("Failed to close event publisher", "error", err)
	}
	if err := redisClient.Close(); err != nil {
		logger.Error("Failed to close redis client", "error", err)
	}
	if err := repo.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	}

	logger.Info("Shutdown complete")
}
