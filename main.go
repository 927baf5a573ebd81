package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/D3fc0n3-1/Deal-hunter/config"
	"github.com/D3fc0n3-1/Deal-hunter/internal/output"
	"github.com/D3fc0n3-1/Deal-hunter/internal/platform"
	"github.com/D3fc0n3-1/Deal-hunter/logger"
	"github.com/D3fc0n3-1/Deal-hunter/services/cache"
	"github.com/D3fc0n3-1/Deal-hunter/services/publisher"
	"github.com/D3fc0n3-1/Deal-hunter/services/store"
	"github.com/D3fc0n3-1/Deal-hunter/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Load and validate configuration
	cfg := config.LoadConfig()

	logger.Init(cfg.LogLevel)
	log := logger.Default

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("schedule_interval", cfg.ScheduleInterval).
		Strs("platforms", cfg.EnabledPlatforms).
		Msg("Starting deal hunter")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Optional platform block cache
	var cacheSvc cache.Service
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcache(cfg.MemcacheAddr)
		log.Info().Str("addr", cfg.MemcacheAddr).Msg("Using memcache block cache")
	}

	// Optional listings database
	var listingStore worker.ListingStore
	if cfg.DatabaseFile != "" {
		db, err := store.Open(cfg.DatabaseFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize listings database")
		}
		defer db.Close()
		listingStore = db
		log.Info().Str("path", cfg.DatabaseFile).Msg("Using listings database")
	}

	// Optional listing publisher
	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		redisPub := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		defer redisPub.Close()
		pub = redisPub
		log.Info().Str("addr", cfg.RedisAddr).Str("stream", cfg.RedisStream).Msg("Using redis publisher")
	}

	// Create platform backends
	platforms := platform.CreatePlatforms(cfg, cacheSvc)
	if len(platforms) == 0 {
		log.Fatal().Msg("No platforms were created")
	}
	log.Info().Int("platform_count", len(platforms)).Msg("Created platforms")

	// Create and start the worker
	w := worker.NewWorker(
		platforms,
		output.NewWriter(cfg.OutputFile),
		listingStore,
		pub,
		cfg.InputFile,
		cfg.ScheduleInterval,
	)

	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting search worker")
		workerDone <- w.Run(ctx)
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Worker exited with error")
		}
	}

	log.Info().Msg("Shut down gracefully")
}
