package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parthpandya1729/giarecon/internal/api"
	"github.com/parthpandya1729/giarecon/internal/config"
	"github.com/parthpandya1729/giarecon/internal/logger"
	"github.com/parthpandya1729/giarecon/internal/mailbridge"
	"github.com/parthpandya1729/giarecon/internal/recon"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Credentials and URLs may come from a local .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting recon tool server")

	validation := cfg.Validate()
	for _, warning := range validation.Warnings {
		log.Warn().Msg(warning)
	}
	if !validation.Valid {
		for _, e := range validation.Errors {
			log.Error().Msg(e)
		}
		log.Fatal().Msg("Invalid configuration")
	}

	log.Info().
		Str("recon_api", cfg.ReconAPI.BaseURL).
		Str("email_bridge", cfg.EmailBridge.BaseURL).
		Bool("debug", cfg.Debug).
		Msg("Configuration loaded")

	reconClient := recon.NewClient(cfg)
	mailClient := mailbridge.NewClient(cfg)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.RecoveryMiddleware())

	handler := api.NewHandler(reconClient, mailClient, cfg)
	api.SetupRoutes(router, handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
