package stt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chat-apropo/speech-api/internal/logger"
	"github.com/chat-apropo/speech-api/internal/media"
	"github.com/chat-apropo/speech-api/internal/storage"
	"github.com/sashabaranov/go-openai"
)

// Transcriber is the part of the OpenAI client used for recognition.
type Transcriber interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// OpenAIRecognizer implements STT using the OpenAI transcription API with
// word-level timestamps. It always returns a single transcript.
type OpenAIRecognizer struct {
	client  Transcriber
	model   string
	tempDir string
	timeout time.Duration
	log     *logger.Logger
}

func NewOpenAIRecognizer(client Transcriber, model, tempDir string, timeout time.Duration, log *logger.Logger) *OpenAIRecognizer {
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIRecognizer{
		client:  client,
		model:   model,
		tempDir: tempDir,
		timeout: timeout,
		log:     log.With("engine", "openai"),
	}
}

func (r *OpenAIRecognizer) Name() string { return "openai" }

func (r *OpenAIRecognizer) SampleRate() int { return 16000 }

func (r *OpenAIRecognizer) Version(ctx context.Context) (string, error) {
	return "openai " + r.model, nil
}

func (r *OpenAIRecognizer) Recognize(ctx context.Context, lang string, pcm *media.PCM, candidates int) (*Metadata, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	scope := storage.NewScope(r.tempDir)
	defer func() {
		if err := scope.Cleanup(); err != nil {
			r.log.Warn("cleanup failed", "error", err)
		}
	}()
	f, err := scope.Create(".wav")
	if err != nil {
		return nil, err
	}
	if err := media.WriteWAV(f, pcm); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:                  r.model,
		FilePath:               f.Name(),
		Language:               lang,
		Format:                 openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{openai.TranscriptionTimestampGranularityWord},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI transcription error: %w", err)
	}
	r.log.Debug("transcription done", "lang", lang, "words", len(resp.Words), "took", time.Since(start))

	words := make([]TimedWord, 0, len(resp.Words))
	for _, w := range resp.Words {
		words = append(words, TimedWord{Word: w.Word, Start: w.Start, End: w.End})
	}
	if len(words) == 0 {
		for _, w := range strings.Fields(resp.Text) {
			words = append(words, TimedWord{Word: w})
		}
	}

	var confidence float64
	if len(resp.Segments) > 0 {
		for _, s := range resp.Segments {
			confidence += s.AvgLogprob
		}
		confidence /= float64(len(resp.Segments))
	}

	return &Metadata{Transcripts: []Transcript{{
		Confidence: confidence,
		Tokens:     TokensFromWords(words),
	}}}, nil
}
