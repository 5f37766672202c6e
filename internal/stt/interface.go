package stt

import (
	"context"

	"github.com/chat-apropo/speech-api/internal/media"
)

// Recognizer defines the interface for speech-to-text engines.
type Recognizer interface {
	// Recognize transcribes mono PCM in lang and returns up to candidates
	// hypotheses, best first.
	Recognize(ctx context.Context, lang string, pcm *media.PCM, candidates int) (*Metadata, error)

	// SampleRate is the rate PCM must be normalized to before Recognize.
	SampleRate() int

	// Version describes the engine for GET /version.
	Version(ctx context.Context) (string, error)

	// Name returns the name of the engine (e.g., "coqui", "openai")
	Name() string
}

// Model is a recognizer loaded for one language.
type Model interface {
	Recognize(ctx context.Context, pcm *media.PCM, candidates int) (*Metadata, error)
}

// LoadFunc loads the model stored in files for lang.
type LoadFunc func(ctx context.Context, lang string, files ModelFiles) (Model, error)
