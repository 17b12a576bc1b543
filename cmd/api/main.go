package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-journal/internal/account"
	"github.com/dvloznov/finance-journal/internal/api"
	"github.com/dvloznov/finance-journal/internal/archive"
	"github.com/dvloznov/finance-journal/internal/config"
	infraBQ "github.com/dvloznov/finance-journal/internal/infra/bigquery"
	"github.com/dvloznov/finance-journal/internal/jobs"
	"github.com/dvloznov/finance-journal/internal/jobs/inmemory"
	"github.com/dvloznov/finance-journal/internal/journal"
	"github.com/dvloznov/finance-journal/internal/llm"
	"github.com/dvloznov/finance-journal/internal/logger"
	"github.com/dvloznov/finance-journal/internal/metrics"
	"github.com/dvloznov/finance-journal/internal/pipeline"
	"github.com/dvloznov/finance-journal/internal/storage/sqlite"
	"github.com/dvloznov/finance-journal/internal/voice"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to TOML config (default finance-journal.toml)")
		port       = flag.String("port", "", "HTTP server port (overrides server.port)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	log := logger.NewFromConfig(cfg.Logging.Level, cfg.Logging.Format)
	ctx := logger.WithContext(context.Background(), log)

	provider, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure model provider")
	}
	log.Info().Str("provider", provider.Name).Str("model", provider.Model).Msg("Model provider configured")

	store, err := sqlite.New(ctx, cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open journal database")
	}
	defer store.Close()

	pipelineOpts := []pipeline.Option{pipeline.WithModelInfo(provider.Name, provider.Model)}

	// Audit writes go through the job queue so BigQuery latency stays off
	// the request path.
	var (
		jobStore *inmemory.Store
		jobQueue *inmemory.Queue
	)
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if cfg.Audit.Enabled {
		auditRepo, err := infraBQ.NewBigQueryAuditRepository(ctx, cfg.Audit.Project, cfg.Audit.Dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create audit repository")
		}
		defer auditRepo.Close()

		jobStore = inmemory.NewStore()
		jobQueue = inmemory.NewQueue(cfg.Jobs.BufferSize, jobStore,
			inmemory.WithWorkers(cfg.Jobs.Workers),
			inmemory.WithLogger(log),
		)
		if err := jobQueue.Start(workerCtx, jobs.NewRecordRunHandler(auditRepo)); err != nil {
			log.Fatal().Err(err).Msg("Failed to start audit workers")
		}
		pipelineOpts = append(pipelineOpts, pipeline.WithRecorder(jobs.NewQueueRecorder(jobQueue, cfg.Jobs.MaxRetries)))
		log.Info().Str("dataset", cfg.Audit.Dataset).Int("workers", cfg.Jobs.Workers).Msg("Run audit enabled")
	}

	runner := pipeline.New(provider.Gateway, pipelineOpts...)

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn().Msg("auth.jwt_secret not set; using an ephemeral secret, tokens will not survive a restart")
	}

	deps := api.Deps{
		Runner:   runner,
		Journal:  journal.NewService(store),
		Accounts: account.NewService(store),
		Tokens:   account.NewTokenManager(secret, cfg.TokenTTL()),
		Registry: metrics.NewRegistry(),
		Log:      log,
	}
	if jobStore != nil {
		deps.Jobs = jobStore
	}

	if cfg.ArchiveEnabled() {
		archiver, err := archive.NewGCSArchiver(ctx, cfg.Archive.Bucket, cfg.Archive.Prefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create workbook archiver")
		}
		defer archiver.Close()
		deps.Archiver = archiver
		log.Info().Str("bucket", cfg.Archive.Bucket).Msg("Workbook archive enabled")
	}

	switch {
	case !cfg.Voice.Enabled:
	case provider.Gemini == nil:
		log.Warn().Msg("Voice channel requires the gemini provider; /ws/voice-to-voice disabled")
	default:
		speech := voice.NewGeminiSpeech(provider.Gemini, voice.GeminiConfig{
			TranscribeModel: cfg.Voice.TranscribeModel,
			ReplyModel:      cfg.LLM.Model,
			SpeechModel:     cfg.Voice.SpeechModel,
			VoiceName:       cfg.Voice.VoiceName,
		})
		deps.Voice = voice.NewHandler(speech, voice.Config{
			MaxHistory:      cfg.Voice.MaxHistory,
			MaxMessageBytes: cfg.Voice.MaxMessageBytes,
			TurnTimeout:     3 * cfg.LLMTimeout(),
		}, log)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewHandler(deps),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Wait for in-flight and buffered audit jobs before the workers' context
	// is cancelled.
	if jobQueue != nil {
		if err := jobQueue.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error stopping job queue")
		}
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
