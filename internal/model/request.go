package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindSTT = "stt"
	KindTTS = "tts"

	SourceUpload = "upload"
	SourceURL    = "url"
	SourceText   = "text"

	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// Request represents one STT or TTS request record
type Request struct {
	ID               uuid.UUID              `json:"id"`
	Kind             string                 `json:"kind"`
	Language         string                 `json:"language"`
	Engine           string                 `json:"engine"`
	Source           string                 `json:"source"`
	AudioFormat      *string                `json:"audio_format,omitempty"`
	AudioDurationMs  *int                   `json:"audio_duration_ms,omitempty"`
	AudioSizeBytes   *int64                 `json:"audio_size_bytes,omitempty"`
	Transcript       *string                `json:"transcript,omitempty"`
	Confidence       *float64               `json:"confidence,omitempty"`
	Status           string                 `json:"status"`
	ErrorMessage     *string                `json:"error_message,omitempty"`
	ProcessingTimeMs *int                   `json:"processing_time_ms,omitempty"`
	Metadata         map[string]interface{} `json:"metadata"`
	CreatedAt        time.Time              `json:"created_at"`
}

// NewRequest returns a record in the processing state.
func NewRequest(kind, lang, engine, source string) *Request {
	return &Request{
		ID:        uuid.New(),
		Kind:      kind,
		Language:  lang,
		Engine:    engine,
		Source:    source,
		Status:    StatusProcessing,
		Metadata:  make(map[string]interface{}),
		CreatedAt: time.Now().UTC(),
	}
}
