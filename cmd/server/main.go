package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chat-apropo/speech-api/internal/api"
	"github.com/chat-apropo/speech-api/internal/config"
	"github.com/chat-apropo/speech-api/internal/db"
	"github.com/chat-apropo/speech-api/internal/logger"
	"github.com/chat-apropo/speech-api/internal/media"
	"github.com/chat-apropo/speech-api/internal/repository"
	"github.com/chat-apropo/speech-api/internal/stt"
	"github.com/chat-apropo/speech-api/internal/tts"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database if DATABASE_URL is provided
	var repo repository.RequestRepository
	if cfg.DatabaseURL != "" {
		logg.Info("Initializing database connection")
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logg.Warn("Failed to initialize database, continuing with in-memory history", "error", err)
		} else {
			defer conn.Close()
			repo = repository.NewPostgresRepository(conn)
			logg.Info("Database and repository initialized successfully")
		}
	} else {
		logg.Info("DATABASE_URL not set, request history is kept in memory")
	}
	if repo == nil {
		repo = repository.NewMemoryRepository(cfg.HistoryMaxRecords)
	}

	tools := media.NewRunner(logg, media.Options{
		FFmpegBin:       cfg.FFmpegBin,
		FFprobeBin:      cfg.FFprobeBin,
		SoxBin:          cfg.SoxBin,
		CurlBin:         cfg.CurlBin,
		ToolTimeout:     cfg.ToolTimeout,
		DownloadTimeout: cfg.DownloadTimeout,
	})

	registry := stt.NewRegistry(cfg.ModelsDir)
	recognizer, err := stt.NewRecognizer(ctx, cfg, registry, logg)
	if err != nil {
		logg.Fatal("Failed to initialize STT engine", "engine", cfg.STTEngine, "error", err)
	}
	synthesizer, err := tts.NewSynthesizer(cfg, logg)
	if err != nil {
		logg.Fatal("Failed to initialize TTS engine", "engine", cfg.TTSEngine, "error", err)
	}

	handler := api.NewHandler(api.Deps{
		Config:      cfg,
		Log:         logg,
		Tools:       tools,
		Registry:    registry,
		Recognizer:  recognizer,
		Synthesizer: synthesizer,
		Repo:        repo,
	})

	r := gin.New()
	api.RegisterRoutes(r, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info("speech-api running",
			"port", cfg.Port,
			"stt_engine", recognizer.Name(),
			"tts_engine", synthesizer.Name(),
			"models_dir", registry.Dir(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	logg.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("Graceful shutdown failed", "error", err)
	}
}
