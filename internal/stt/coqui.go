package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chat-apropo/speech-api/internal/logger"
	"github.com/chat-apropo/speech-api/internal/media"
	"github.com/chat-apropo/speech-api/internal/storage"
)

// CoquiRecognizer runs the Coqui STT command line client against per-language
// models from the registry.
type CoquiRecognizer struct {
	bin        string
	tempDir    string
	sampleRate int
	timeout    time.Duration
	provider   *ModelProvider
	log        *logger.Logger
}

type CoquiOptions struct {
	Bin        string
	TempDir    string
	SampleRate int
	Timeout    time.Duration
}

func NewCoquiRecognizer(registry *Registry, opts CoquiOptions, log *logger.Logger) *CoquiRecognizer {
	if opts.Bin == "" {
		opts.Bin = "stt"
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 16000
	}
	r := &CoquiRecognizer{
		bin:        opts.Bin,
		tempDir:    opts.TempDir,
		sampleRate: opts.SampleRate,
		timeout:    opts.Timeout,
		log:        log.With("engine", "coqui"),
	}
	r.provider = NewModelProvider(registry, r.loadModel, r.log)
	return r
}

func (r *CoquiRecognizer) Name() string { return "coqui" }

func (r *CoquiRecognizer) SampleRate() int { return r.sampleRate }

func (r *CoquiRecognizer) Version(ctx context.Context) (string, error) {
	var out bytes.Buffer
	if err := media.Run(ctx, 10*time.Second, "stt", r.bin, []string{"--version"}, &out); err != nil {
		return "", err
	}
	return parseCoquiVersion(out.String()), nil
}

func (r *CoquiRecognizer) Recognize(ctx context.Context, lang string, pcm *media.PCM, candidates int) (*Metadata, error) {
	return r.provider.Recognize(ctx, lang, pcm, candidates)
}

func (r *CoquiRecognizer) loadModel(ctx context.Context, lang string, files ModelFiles) (Model, error) {
	return &coquiModel{r: r, files: files}, nil
}

type coquiModel struct {
	r     *CoquiRecognizer
	files ModelFiles
}

func (m *coquiModel) Recognize(ctx context.Context, pcm *media.PCM, candidates int) (*Metadata, error) {
	scope := storage.NewScope(m.r.tempDir)
	defer func() {
		if err := scope.Cleanup(); err != nil {
			m.r.log.Warn("cleanup failed", "error", err)
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

	args := []string{"--model", m.files.Model}
	if m.files.Scorer != "" {
		args = append(args, "--scorer", m.files.Scorer)
	}
	args = append(args,
		"--audio", f.Name(),
		"--json",
		"--candidate_transcripts", strconv.Itoa(candidates),
	)

	var out bytes.Buffer
	if err := media.Run(ctx, m.r.timeout, "stt", m.r.bin, args, &out); err != nil {
		return nil, err
	}
	return ParseCoquiOutput(out.Bytes())
}

type coquiJSON struct {
	Transcripts []struct {
		Confidence float64 `json:"confidence"`
		Tokens     []Token `json:"tokens"`
		Words      []struct {
			Word      string  `json:"word"`
			StartTime float64 `json:"start_time"`
			Duration  float64 `json:"duration"`
		} `json:"words"`
	} `json:"transcripts"`
}

// ParseCoquiOutput decodes the client's JSON metadata. Character tokens are
// used when present; word-level output is expanded with TokensFromWords.
func ParseCoquiOutput(data []byte) (*Metadata, error) {
	// the client may print log lines before the JSON document
	start := bytes.IndexByte(data, '{')
	if start < 0 {
		return nil, fmt.Errorf("no metadata in recognizer output")
	}
	var raw coquiJSON
	if err := json.Unmarshal(data[start:], &raw); err != nil {
		return nil, fmt.Errorf("failed to parse recognizer output: %w", err)
	}

	meta := &Metadata{Transcripts: make([]Transcript, 0, len(raw.Transcripts))}
	for _, t := range raw.Transcripts {
		tokens := t.Tokens
		if len(tokens) == 0 && len(t.Words) > 0 {
			words := make([]TimedWord, 0, len(t.Words))
			for _, w := range t.Words {
				words = append(words, TimedWord{Word: w.Word, Start: w.StartTime, End: w.StartTime + w.Duration})
			}
			tokens = TokensFromWords(words)
		}
		if tokens == nil {
			tokens = []Token{}
		}
		meta.Transcripts = append(meta.Transcripts, Transcript{Confidence: t.Confidence, Tokens: tokens})
	}
	return meta, nil
}

func parseCoquiVersion(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// "Coqui STT 1.4.0" or "TensorFlow: v2.8.0 ..." followed by the STT line
		if strings.Contains(strings.ToLower(line), "stt") {
			fields := strings.Fields(line)
			return fields[len(fields)-1]
		}
	}
	return strings.TrimSpace(out)
}
