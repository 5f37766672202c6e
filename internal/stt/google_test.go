package stt

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chat-apropo/speech-api/internal/logger"
	"github.com/chat-apropo/speech-api/internal/media"
)

func TestIsGoogleAPIKey(t *testing.T) {
	if !IsGoogleAPIKey("AIzaSy" + "012345678901234567890123456789012") {
		t.Fatalf("expected API key")
	}
	if IsGoogleAPIKey("./keys/sa.json") || IsGoogleAPIKey(`{"type":"service_account"}`) {
		t.Fatalf("unexpected API key match")
	}
}

func TestGoogleMetadataCandidates(t *testing.T) {
	var resp googleResponse
	body := `{"results":[
	  {"alternatives":[
	    {"transcript":"hello","confidence":0.9,"words":[{"startTime":"0s","endTime":"0.500s","word":"hello"}]},
	    {"transcript":"yellow","confidence":0.5}
	  ]},
	  {"alternatives":[
	    {"transcript":"world","confidence":0.7,"words":[{"startTime":"1.100s","endTime":"1.600s","word":"world"}]}
	  ]}
	]}`
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatal(err)
	}

	meta := googleMetadata(resp, 3)
	if len(meta.Transcripts) != 2 {
		t.Fatalf("transcripts: %d", len(meta.Transcripts))
	}
	res := BuildResult(meta)
	if res.Full != "hello world" {
		t.Fatalf("full: %q", res.Full)
	}
	if w := res.Transcripts[0].Words[1]; w.Word != "world" || w.StartTime != 1.1 {
		t.Fatalf("word: %+v", w)
	}
	if got := FullText(meta.Transcripts[1]); got != "yellow world" {
		t.Fatalf("second candidate: %q", got)
	}
	if c := meta.Transcripts[0].Confidence; c < 0.79 || c > 0.81 {
		t.Fatalf("confidence: %v", c)
	}

	if got := googleMetadata(resp, 1); len(got.Transcripts) != 1 {
		t.Fatalf("candidates cap: %d", len(got.Transcripts))
	}
}

func TestGoogleRecognizerRequest(t *testing.T) {
	var got googleRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"error":{"code":403,"message":"bad key","status":"PERMISSION_DENIED"}}`)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = io.WriteString(w, `{"results":[{"alternatives":[{"transcript":"ok","confidence":0.8,"words":[{"startTime":"0s","endTime":"0.3s","word":"ok"}]}]}]}`)
	}))
	defer srv.Close()

	r := &GoogleRecognizer{
		apiKey:     "test-key",
		endpoint:   srv.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		useAPIKey:  true,
		log:        logger.NewNop(),
	}
	meta, err := r.Recognize(context.Background(), "en-US", &media.PCM{SampleRate: 16000, Samples: []int16{1, 2}}, 2)
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if FullText(meta.Transcripts[0]) != "ok" {
		t.Fatalf("transcript: %+v", meta)
	}
	if got.Config.Encoding != "LINEAR16" || got.Config.SampleRateHertz != 16000 || !got.Config.EnableWordTimeOffsets {
		t.Fatalf("config: %+v", got.Config)
	}
	if got.Config.MaxAlternatives != 2 || got.Config.LanguageCode != "en-US" {
		t.Fatalf("config: %+v", got.Config)
	}

	r.apiKey = "wrong"
	if _, err := r.Recognize(context.Background(), "en-US", &media.PCM{SampleRate: 16000}, 1); err == nil {
		t.Fatalf("expected API error")
	}
}
