package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BEARER_TOKEN", "secret")
	t.Setenv("STT_ENGINE", "")
	t.Setenv("TTS_ENGINE", "")
	t.Setenv("PORT", "")
	t.Setenv("MAX_AUDIO_SECONDS", "")
	t.Setenv("MAX_TTS_TEXT_LENGTH", "")
	t.Setenv("MAX_CONTENT_LENGTH", "")
	t.Setenv("TOOL_TIMEOUT", "")
	t.Setenv("HISTORY_MAX_RECORDS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "5555" {
		t.Fatalf("port: got=%q", cfg.Port)
	}
	if cfg.STTEngine != "coqui" || cfg.TTSEngine != "larynx" {
		t.Fatalf("engines: got=%q/%q", cfg.STTEngine, cfg.TTSEngine)
	}
	if cfg.MaxAudioSeconds != 180.0 {
		t.Fatalf("max audio: got=%v", cfg.MaxAudioSeconds)
	}
	if cfg.MaxTTSTextLength != 512 {
		t.Fatalf("max text: got=%d", cfg.MaxTTSTextLength)
	}
	if cfg.MaxContentLength != 16*1000*1000 {
		t.Fatalf("max content: got=%d", cfg.MaxContentLength)
	}
	if cfg.ToolTimeout != 2*time.Minute {
		t.Fatalf("tool timeout: got=%v", cfg.ToolTimeout)
	}
	if cfg.HistoryMaxRecords != 1000 {
		t.Fatalf("history cap: got=%d", cfg.HistoryMaxRecords)
	}
}

func TestLoadRejectsZeroHistoryCap(t *testing.T) {
	t.Setenv("BEARER_TOKEN", "secret")
	t.Setenv("STT_ENGINE", "")
	t.Setenv("TTS_ENGINE", "")
	t.Setenv("HISTORY_MAX_RECORDS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadRequiresBearer(t *testing.T) {
	t.Setenv("BEARER_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without BEARER_TOKEN")
	}
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	t.Setenv("BEARER_TOKEN", "secret")
	t.Setenv("STT_ENGINE", "vosk")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown engine")
	}
}

func TestLoadOpenAIRequiresKey(t *testing.T) {
	t.Setenv("BEARER_TOKEN", "secret")
	t.Setenv("STT_ENGINE", "")
	t.Setenv("TTS_ENGINE", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without OPENAI_API_KEY")
	}
}

func TestEnvParsers(t *testing.T) {
	t.Setenv("X_DUR", "30s")
	t.Setenv("X_BAD_DUR", "soon")
	t.Setenv("X_BOOL", "yes")
	t.Setenv("X_FLOAT", "12.5")

	if got := getEnvDuration("X_DUR", time.Second); got != 30*time.Second {
		t.Fatalf("duration: got=%v", got)
	}
	if got := getEnvDuration("X_BAD_DUR", time.Second); got != time.Second {
		t.Fatalf("bad duration should fall back: got=%v", got)
	}
	if !getEnvBool("X_BOOL", false) {
		t.Fatalf("bool: expected true")
	}
	if got := getEnvFloat("X_FLOAT", 0); got != 12.5 {
		t.Fatalf("float: got=%v", got)
	}
	if got := splitList(" a, ,b "); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("splitList: got=%v", got)
	}
}
