package tts

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/chat-apropo/speech-api/internal/logger"
	"github.com/chat-apropo/speech-api/internal/media"
	"github.com/sashabaranov/go-openai"
)

func TestLanguagesSorted(t *testing.T) {
	want := []string{"de", "en", "es", "fr", "it", "nl", "ru", "sv", "sw"}
	if got := Languages(); !reflect.DeepEqual(got, want) {
		t.Fatalf("languages: %v", got)
	}
	if !Supported("sw") || Supported("pt") || Supported("") {
		t.Fatalf("Supported mismatch")
	}
}

func TestLarynxArgs(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"hello world", []string{"-m", "larynx", "en", "hello world"}},
		{`"; rm -rf / #`, []string{"-m", "larynx", "en", `"; rm -rf / #`}},
		{"-v voice", []string{"-m", "larynx", "en", "--", "-v voice"}},
	}
	for _, tc := range cases {
		if got := larynxArgs("en", tc.text); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("larynxArgs(%q): got=%v want=%v", tc.text, got, tc.want)
		}
	}
}

func TestLarynxSynthesizerWritesStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	py := filepath.Join(t.TempDir(), "python")
	// prints the text argument in place of audio
	script := "#!/bin/sh\nshift 3\nprintf 'RIFF%s' \"$1\"\n"
	if err := os.WriteFile(py, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "out.wav")
	s := NewLarynxSynthesizer(py, 5*time.Second, logger.NewNop())
	if err := s.Synthesize(context.Background(), "en", "it's $HOME", out); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "RIFFit's $HOME" {
		t.Fatalf("output: %q", data)
	}
}

func TestLarynxSynthesizerFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	py := filepath.Join(t.TempDir(), "python")
	if err := os.WriteFile(py, []byte("#!/bin/sh\necho 'No module named larynx' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	s := NewLarynxSynthesizer(py, 5*time.Second, logger.NewNop())
	err := s.Synthesize(context.Background(), "en", "hi", filepath.Join(t.TempDir(), "out.wav"))
	var te *media.ToolError
	if !errors.As(err, &te) || te.NotFound {
		t.Fatalf("expected exit failure, got %v", err)
	}
	if !strings.Contains(te.Stderr, "larynx") {
		t.Fatalf("stderr: %q", te.Stderr)
	}
}

type fakeSpeech struct {
	req  openai.CreateSpeechRequest
	body string
	err  error
}

func (f *fakeSpeech) CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error) {
	f.req = req
	if f.err != nil {
		return openai.RawResponse{}, f.err
	}
	return openai.RawResponse{ReadCloser: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestOpenAISynthesizer(t *testing.T) {
	fake := &fakeSpeech{body: "RIFF-audio"}
	s := NewOpenAISynthesizer(fake, "", "", 0, logger.NewNop())
	out := filepath.Join(t.TempDir(), "out.wav")
	if err := s.Synthesize(context.Background(), "fr", "bonjour", out); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if fake.req.ResponseFormat != openai.SpeechResponseFormatWav || fake.req.Voice != openai.VoiceAlloy || fake.req.Model != openai.TTSModel1 {
		t.Fatalf("request: %+v", fake.req)
	}
	data, _ := os.ReadFile(out)
	if string(data) != "RIFF-audio" {
		t.Fatalf("output: %q", data)
	}

	fake.body = ""
	if err := s.Synthesize(context.Background(), "fr", "bonjour", out); err == nil {
		t.Fatalf("expected error for empty body")
	}
	fake.err = errors.New("quota")
	if err := s.Synthesize(context.Background(), "fr", "bonjour", out); err == nil {
		t.Fatalf("expected error")
	}
}
