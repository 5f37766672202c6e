package tts

import "context"

// Synthesizer defines the interface for text-to-speech engines.
type Synthesizer interface {
	// Synthesize renders text in lang as a WAV file at outPath.
	Synthesize(ctx context.Context, lang, text, outPath string) error

	// Name returns the name of the engine (e.g., "larynx", "openai")
	Name() string
}
