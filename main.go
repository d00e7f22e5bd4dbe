package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"safetravels-api/config"
	"safetravels-api/database"
	"safetravels-api/jobs"
	"safetravels-api/logger"
	"safetravels-api/repositories"
	"safetravels-api/routes"
	"safetravels-api/services"
	"safetravels-api/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(config.EnvProduction, "info")
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	if cfg.SeedDatabase {
		if err := database.SeedData(db, log); err != nil {
			log.Warn().Err(err).Msg("failed to seed database")
		}
	}

	images, local, err := newImageStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to initialize image storage")
	}

	emailService := services.NewEmailService(cfg, log)
	if !cfg.EmailEnabled() {
		log.Info().Msg("SMTP not configured, email notifications disabled")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	routes.SetupRoutes(router, cfg, routes.NewDeps(db, cfg, images, emailService, log), log)

	var cleanup *jobs.OrphanImageCleanupJob
	if local != nil && cfg.CleanupInterval > 0 {
		cleanup = jobs.NewOrphanImageCleanupJob(local, []jobs.ImageReferences{
			repositories.NewCarRepository(db),
			repositories.NewBlogRepository(db),
		}, cfg.CleanupInterval, cfg.CleanupGracePeriod, log)
		cleanup.Start()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("environment", cfg.Environment).
			Str("frontend_url", cfg.FrontendURL).
			Str("storage", cfg.StorageDriver).
			Msg("starting SafeTravels Motors API")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if cleanup != nil {
		cleanup.Stop()
	}
	emailService.Wait()
	if err := database.Close(db); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}

	log.Info().Msg("server stopped")
}

// newImageStore returns the configured store, plus the local store when
// uploads live on disk.
func newImageStore(cfg *config.Config) (storage.ImageStore, *storage.LocalStore, error) {
	switch cfg.StorageDriver {
	case "minio":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
		return store, nil, err
	default:
		store, err := storage.NewLocalStore(cfg.UploadDir)
		return store, store, err
	}
}
