package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	BearerToken string
	PyPath      string
	ModelsDir   string
	TempDir     string

	STTEngine string
	TTSEngine string

	STTBin        string
	STTSampleRate int
	FFmpegBin     string
	FFprobeBin    string
	SoxBin        string
	CurlBin       string

	MaxContentLength     int64
	MaxAudioSeconds      float64
	MaxTTSTextLength     int
	CandidateTranscripts int

	ToolTimeout      time.Duration
	DownloadTimeout  time.Duration
	RecognizeTimeout time.Duration
	SynthTimeout     time.Duration

	StrictHTTPStatus bool
	LogMode          string
	CORSOrigins      []string

	DatabaseURL       string
	HistoryMaxRecords int

	OpenAIKey      string
	OpenAIBaseURL  string
	OpenAISTTModel string
	OpenAITTSModel string
	OpenAITTSVoice string

	GoogleProjectID string
	GoogleKeyData   string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "5555"),
		BearerToken: os.Getenv("BEARER_TOKEN"),
		PyPath:      getEnv("PY_PATH", "python3"),
		ModelsDir:   getEnv("MODELS_DIR", "./models"),
		TempDir:     getEnv("TEMP_DIR", os.TempDir()),

		STTEngine: strings.ToLower(getEnv("STT_ENGINE", "coqui")),
		TTSEngine: strings.ToLower(getEnv("TTS_ENGINE", "larynx")),

		STTBin:        getEnv("STT_BIN", "stt"),
		STTSampleRate: getEnvInt("STT_SAMPLE_RATE", 16000),
		FFmpegBin:     getEnv("FFMPEG_BIN", "ffmpeg"),
		FFprobeBin:    getEnv("FFPROBE_BIN", "ffprobe"),
		SoxBin:        getEnv("SOX_BIN", "sox"),
		CurlBin:       getEnv("CURL_BIN", "curl"),

		MaxContentLength:     int64(getEnvInt("MAX_CONTENT_LENGTH", 16*1000*1000)),
		MaxAudioSeconds:      getEnvFloat("MAX_AUDIO_SECONDS", 180.0),
		MaxTTSTextLength:     getEnvInt("MAX_TTS_TEXT_LENGTH", 512),
		CandidateTranscripts: getEnvInt("CANDIDATE_TRANSCRIPTS", 3),

		ToolTimeout:      getEnvDuration("TOOL_TIMEOUT", 2*time.Minute),
		DownloadTimeout:  getEnvDuration("DOWNLOAD_TIMEOUT", 2*time.Minute),
		RecognizeTimeout: getEnvDuration("RECOGNIZE_TIMEOUT", 5*time.Minute),
		SynthTimeout:     getEnvDuration("SYNTH_TIMEOUT", 2*time.Minute),

		StrictHTTPStatus: getEnvBool("STRICT_HTTP_STATUS", false),
		LogMode:          getEnv("LOG_MODE", "development"),
		CORSOrigins:      splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HistoryMaxRecords: getEnvInt("HISTORY_MAX_RECORDS", 1000),

		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		OpenAISTTModel: getEnv("OPENAI_STT_MODEL", "whisper-1"),
		OpenAITTSModel: getEnv("OPENAI_TTS_MODEL", "tts-1"),
		OpenAITTSVoice: getEnv("OPENAI_TTS_VOICE", "alloy"),

		GoogleProjectID: os.Getenv("GOOGLE_STT_PROJECT_ID"),
		GoogleKeyData:   os.Getenv("GOOGLE_STT_KEY_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and engine-specific requirements.
func (c *Config) Validate() error {
	if c.BearerToken == "" {
		return fmt.Errorf("BEARER_TOKEN is required. Set it as an environment variable or in .env")
	}

	switch c.STTEngine {
	case "coqui", "google":
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when STT_ENGINE=openai")
		}
	default:
		return fmt.Errorf("unsupported STT_ENGINE: %s. Supported: coqui, openai, google", c.STTEngine)
	}

	switch c.TTSEngine {
	case "larynx":
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when TTS_ENGINE=openai")
		}
	default:
		return fmt.Errorf("unsupported TTS_ENGINE: %s. Supported: larynx, openai", c.TTSEngine)
	}

	if c.STTSampleRate <= 0 {
		return fmt.Errorf("STT_SAMPLE_RATE must be positive")
	}
	if c.MaxContentLength <= 0 {
		return fmt.Errorf("MAX_CONTENT_LENGTH must be positive")
	}
	if c.MaxAudioSeconds <= 0 {
		return fmt.Errorf("MAX_AUDIO_SECONDS must be positive")
	}
	if c.MaxTTSTextLength <= 0 {
		return fmt.Errorf("MAX_TTS_TEXT_LENGTH must be positive")
	}
	if c.CandidateTranscripts <= 0 {
		c.CandidateTranscripts = 1
	}
	if c.HistoryMaxRecords <= 0 {
		return fmt.Errorf("HISTORY_MAX_RECORDS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	case "0", "f", "false", "n", "no", "off":
		return false
	default:
		return fallback
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
