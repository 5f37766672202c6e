package media

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/chat-apropo/speech-api/internal/logger"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	p := filepath.Join(t.TempDir(), "tool.sh")
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return p
}

func TestRunMissingBinaryIsNotFound(t *testing.T) {
	err := Run(context.Background(), time.Second, "sox", "definitely-not-a-real-binary-xyz", nil, nil)
	tool, ok := IsToolNotFound(err)
	if !ok || tool != "sox" {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRunMissingAbsolutePathIsNotFound(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing")
	err := Run(context.Background(), time.Second, "ffmpeg", p, nil, nil)
	if _, ok := IsToolNotFound(err); !ok {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRunExitFailureKeepsStderr(t *testing.T) {
	bin := writeScript(t, "echo boom >&2\nexit 3")
	err := Run(context.Background(), time.Second, "ffmpeg", bin, nil, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := IsToolNotFound(err); ok {
		t.Fatalf("exit failure must not be reported as not found")
	}
	te, ok := err.(*ToolError)
	if !ok {
		t.Fatalf("expected *ToolError, got %T", err)
	}
	if te.Stderr != "boom" {
		t.Fatalf("stderr: %q", te.Stderr)
	}
}

func TestRunCapturesStdout(t *testing.T) {
	bin := writeScript(t, `printf '%s' "$1"`)
	var out bytes.Buffer
	if err := Run(context.Background(), time.Second, "echo", bin, []string{"hello"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "hello" {
		t.Fatalf("stdout: %q", out.String())
	}
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	bin := writeScript(t, "sleep 30")
	start := time.Now()
	err := Run(context.Background(), 200*time.Millisecond, "slow", bin, nil, nil)
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if time.Since(start) > 10*time.Second {
		t.Fatalf("process was not killed in time")
	}
}

func TestProbeParsesToolOutput(t *testing.T) {
	bin := writeScript(t, "echo 3.500000")
	r := NewRunner(logger.NewNop(), Options{FFprobeBin: bin})
	d, err := r.Probe(context.Background(), "ignored.wav")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if d != 3.5 {
		t.Fatalf("duration: %v", d)
	}
}

func TestResampleArgs(t *testing.T) {
	got := strings.Join(resampleArgs("in.wav", 16000), " ")
	want := "in.wav --type raw --bits 16 --channels 1 --rate 16000 --encoding signed-integer --endian little --compression 0.0 --no-dither -"
	if got != want {
		t.Fatalf("args:\n got=%s\nwant=%s", got, want)
	}
}

func TestDownloadRejectsNonHTTP(t *testing.T) {
	r := NewRunner(logger.NewNop(), Options{CurlBin: "definitely-not-curl"})
	err := r.Download(context.Background(), "file:///etc/passwd", filepath.Join(t.TempDir(), "x"), 10)
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := IsToolNotFound(err); ok {
		t.Fatalf("scheme check should run before the tool")
	}
}
