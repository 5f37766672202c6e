package tts

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chat-apropo/speech-api/internal/logger"
	"github.com/chat-apropo/speech-api/internal/media"
)

// LarynxSynthesizer runs "<python> -m larynx <lang> <text>" and stores its
// stdout as the WAV output. Arguments are passed directly, never through a
// shell.
type LarynxSynthesizer struct {
	pyPath  string
	timeout time.Duration
	log     *logger.Logger
}

func NewLarynxSynthesizer(pyPath string, timeout time.Duration, log *logger.Logger) *LarynxSynthesizer {
	if pyPath == "" {
		pyPath = "python3"
	}
	return &LarynxSynthesizer{pyPath: pyPath, timeout: timeout, log: log.With("engine", "larynx")}
}

func (s *LarynxSynthesizer) Name() string { return "larynx" }

func (s *LarynxSynthesizer) Synthesize(ctx context.Context, lang, text, outPath string) error {
	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer out.Close()

	start := time.Now()
	if err := media.Run(ctx, s.timeout, "larynx", s.pyPath, larynxArgs(lang, text), out); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	s.log.Debug("synthesis done", "lang", lang, "chars", len(text), "took", time.Since(start))
	return nil
}

func larynxArgs(lang, text string) []string {
	args := []string{"-m", "larynx", lang}
	// keep text that looks like a flag positional
	if strings.HasPrefix(text, "-") {
		args = append(args, "--")
	}
	return append(args, text)
}
