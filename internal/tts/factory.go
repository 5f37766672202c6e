package tts

import (
	"fmt"

	"github.com/chat-apropo/speech-api/internal/ai"
	"github.com/chat-apropo/speech-api/internal/config"
	"github.com/chat-apropo/speech-api/internal/logger"
)

// NewSynthesizer creates the synthesizer selected by TTS_ENGINE.
func NewSynthesizer(cfg *config.Config, log *logger.Logger) (Synthesizer, error) {
	switch cfg.TTSEngine {
	case "", "larynx":
		log.Info("creating larynx TTS synthesizer", "python", cfg.PyPath)
		return NewLarynxSynthesizer(cfg.PyPath, cfg.SynthTimeout, log), nil
	case "openai":
		client, err := ai.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.SynthTimeout)
		if err != nil {
			return nil, err
		}
		log.Info("creating OpenAI TTS synthesizer", "model", cfg.OpenAITTSModel, "voice", cfg.OpenAITTSVoice)
		return NewOpenAISynthesizer(client, cfg.OpenAITTSModel, cfg.OpenAITTSVoice, cfg.SynthTimeout, log), nil
	default:
		return nil, fmt.Errorf("unsupported TTS engine: %s. Supported: larynx, openai", cfg.TTSEngine)
	}
}
