package tts

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chat-apropo/speech-api/internal/logger"
	"github.com/sashabaranov/go-openai"
)

// SpeechClient is the part of the OpenAI client used for synthesis.
type SpeechClient interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// OpenAISynthesizer implements TTS using the OpenAI speech API. The
// language is implied by the text.
type OpenAISynthesizer struct {
	client  SpeechClient
	model   string
	voice   string
	timeout time.Duration
	log     *logger.Logger
}

func NewOpenAISynthesizer(client SpeechClient, model, voice string, timeout time.Duration, log *logger.Logger) *OpenAISynthesizer {
	if model == "" {
		model = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &OpenAISynthesizer{client: client, model: model, voice: voice, timeout: timeout, log: log.With("engine", "openai")}
}

func (s *OpenAISynthesizer) Name() string { return "openai" }

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, lang, text, outPath string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return fmt.Errorf("OpenAI speech error: %w", err)
	}
	defer resp.Close()

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer out.Close()
	n, err := io.Copy(out, resp)
	if err != nil {
		return fmt.Errorf("write speech: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("empty speech response")
	}
	s.log.Debug("synthesis done", "lang", lang, "bytes", n)
	return out.Close()
}
