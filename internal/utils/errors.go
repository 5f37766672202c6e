package utils

import (
	"errors"
	"net/http"
)

// Kind classifies a request failure.
type Kind string

const (
	KindUnauthorized        Kind = "unauthorized"
	KindUnsupportedLanguage Kind = "unsupported_language"
	KindMissingInput        Kind = "missing_input"
	KindDisallowedFileType  Kind = "disallowed_file_type"
	KindDownloadFailed      Kind = "download_failed"
	KindDurationProbeFailed Kind = "duration_probe_failed"
	KindAudioTooLong        Kind = "audio_too_long"
	KindConversionFailed    Kind = "conversion_failed"
	KindToolNotFound        Kind = "tool_not_found"
	KindSynthesisFailed     Kind = "synthesis_failed"
	KindTextTooLong         Kind = "text_too_long"
	KindRecognitionFailed   Kind = "recognition_failed"
	KindPayloadTooLarge     Kind = "payload_too_large"
	KindNotFound            Kind = "not_found"
	KindInternal            Kind = "internal"
)

// APIError is a failure that has a user-facing message. Err keeps the cause
// for logging and is never rendered.
type APIError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func NewError(kind Kind, msg string, err error) *APIError {
	return &APIError{Kind: kind, Message: msg, Err: err}
}

// AsAPIError extracts an APIError from err, wrapping anything else as
// KindInternal with a generic message.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// StatusFor maps a kind to a REST status code. Only used when strict status
// mapping is enabled; otherwise domain errors are answered with 200.
func StatusFor(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUnsupportedLanguage, KindMissingInput, KindDisallowedFileType, KindTextTooLong:
		return http.StatusBadRequest
	case KindAudioTooLong, KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindDurationProbeFailed, KindConversionFailed:
		return http.StatusUnprocessableEntity
	case KindDownloadFailed:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	case KindToolNotFound, KindSynthesisFailed, KindRecognitionFailed, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
