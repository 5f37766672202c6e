package stt

import (
	"context"
	"fmt"

	"github.com/chat-apropo/speech-api/internal/ai"
	"github.com/chat-apropo/speech-api/internal/config"
	"github.com/chat-apropo/speech-api/internal/logger"
)

// NewRecognizer creates the recognizer selected by STT_ENGINE.
func NewRecognizer(ctx context.Context, cfg *config.Config, registry *Registry, log *logger.Logger) (Recognizer, error) {
	switch cfg.STTEngine {
	case "", "coqui":
		log.Info("creating coqui STT recognizer", "bin", cfg.STTBin, "models_dir", registry.Dir(), "sample_rate", cfg.STTSampleRate)
		return NewCoquiRecognizer(registry, CoquiOptions{
			Bin:        cfg.STTBin,
			TempDir:    cfg.TempDir,
			SampleRate: cfg.STTSampleRate,
			Timeout:    cfg.RecognizeTimeout,
		}, log), nil
	case "openai":
		client, err := ai.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.RecognizeTimeout)
		if err != nil {
			return nil, err
		}
		log.Info("creating OpenAI STT recognizer", "model", cfg.OpenAISTTModel)
		return NewOpenAIRecognizer(client, cfg.OpenAISTTModel, cfg.TempDir, cfg.RecognizeTimeout, log), nil
	case "google":
		// Project ID is optional when using API key
		if !IsGoogleAPIKey(cfg.GoogleKeyData) && cfg.GoogleKeyData != "" && cfg.GoogleProjectID == "" {
			return nil, fmt.Errorf("GOOGLE_STT_PROJECT_ID environment variable is required when using service account")
		}
		log.Info("creating Google STT recognizer", "project", cfg.GoogleProjectID)
		return NewGoogleRecognizer(ctx, cfg.GoogleProjectID, cfg.GoogleKeyData, cfg.RecognizeTimeout, log)
	default:
		return nil, fmt.Errorf("unsupported STT engine: %s. Supported: coqui, openai, google", cfg.STTEngine)
	}
}
