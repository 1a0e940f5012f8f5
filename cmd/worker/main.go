package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/LakshmanTurlapati/LinkLess/internal/adapter/repository"
	"github.com/LakshmanTurlapati/LinkLess/internal/infrastructure/cache"
	"github.com/LakshmanTurlapati/LinkLess/internal/infrastructure/database"
	"github.com/LakshmanTurlapati/LinkLess/internal/infrastructure/queue"
	"github.com/LakshmanTurlapati/LinkLess/internal/infrastructure/storage"
	"github.com/LakshmanTurlapati/LinkLess/internal/usecase/pipeline"
	"github.com/LakshmanTurlapati/LinkLess/pkg/ai"
	"github.com/LakshmanTurlapati/LinkLess/pkg/config"
)

// stuck-status report cadence; observation only, nothing is reclaimed
const (
	stuckThreshold      = 15 * time.Minute
	stuckReportInterval = 5 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	log.Println("🔧 Initializing worker dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize object storage
	log.Println("🪣 Connecting to object storage...")
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	// Build provider chains once at startup
	log.Println("🤖 Building provider chains...")
	transcriptionChain, err := ai.BuildTranscriptionChain(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to build transcription chain: %v", err)
	}
	summarizationChain, err := ai.BuildSummarizationChain(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to build summarization chain: %v", err)
	}

	jobQueue := queue.NewRedisQueue(redisClient, logger)

	deps := &pipeline.Deps{
		Store: repository.NewPipelineStore(db),
		Queue: jobQueue,
		Audio: pipeline.NewAudioPreparer(pipeline.AudioConfig{
			DownloadTimeout:    cfg.Pipeline.DownloadTimeout,
			MaxBytes:           cfg.Pipeline.MaxAudioBytes,
			MinDurationSeconds: cfg.Pipeline.MinDurationSeconds,
			MaxDurationSeconds: cfg.Pipeline.MaxDurationSeconds,
			FFprobeBinary:      cfg.Pipeline.FFprobeBinary,
			FFmpegBinary:       cfg.Pipeline.FFmpegBinary,
			TranscodeTimeout:   cfg.Pipeline.TranscodeTimeout,
		}, logger),
		Storage:       minioClient,
		Transcription: transcriptionChain,
		Summarization: summarizationChain,
		TranscriptionRetry: pipeline.RetryPolicy{
			MaxAttempts: cfg.Pipeline.MaxAttempts,
			Delay:       cfg.Pipeline.RetryDelay,
		},
		SummarizationRetry: pipeline.RetryPolicy{
			MaxAttempts: cfg.Pipeline.MaxAttempts,
			Delay:       cfg.Pipeline.RetryDelay,
		},
		DownloadTTL:     cfg.Storage.DownloadTTL,
		MinSummaryWords: cfg.Pipeline.MinSummaryWords,
		Logger:          logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Promote delayed jobs in the background
	go jobQueue.RunScheduler(ctx)

	// Report conversations stuck in an in-progress status
	conversationRepo := repository.NewConversationRepository(db)
	reporter := pipeline.NewStuckReporter(conversationRepo, stuckThreshold, stuckReportInterval, logger)
	go reporter.Run(ctx)

	// Start the worker pool
	worker := pipeline.NewWorker(deps, jobQueue, cfg.Pipeline.WorkerCount, cfg.Pipeline.JobTimeout, logger)
	worker.Start(ctx)
	log.Printf("🚀 Worker pool started with %d workers", cfg.Pipeline.WorkerCount)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down workers...")
	cancel()
	worker.Stop()
	log.Println("✅ Workers stopped gracefully")
}
