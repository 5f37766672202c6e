package api

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/chat-apropo/speech-api/internal/media"
	"github.com/chat-apropo/speech-api/internal/model"
	"github.com/chat-apropo/speech-api/internal/storage"
	"github.com/chat-apropo/speech-api/internal/stt"
	"github.com/chat-apropo/speech-api/internal/utils"
	"github.com/gin-gonic/gin"
)

const multipartMemory = 8 << 20

// speechToText handles POST /stt/:lang
func (h *Handler) speechToText(c *gin.Context) {
	lang := c.Param("lang")
	if !h.registry.Has(lang) {
		h.fail(c, utils.NewError(utils.KindUnsupportedLanguage, "Language not supported", nil))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxContentLength)

	scope := storage.NewScope(h.cfg.TempDir)
	defer h.cleanup(scope)

	started := time.Now()
	rec := model.NewRequest(model.KindSTT, lang, h.recognizer.Name(), "")
	rec.Metadata["request_id"] = c.GetString(requestIDKey)

	result, err := h.transcribe(c, scope, lang, rec)

	// Source is set once acquisition succeeded and the record exists
	if rec.Source != "" {
		h.recordFinish(rec, started, err)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, result)
}

func (h *Handler) transcribe(c *gin.Context, scope *storage.Scope, lang string, rec *model.Request) (*stt.Result, error) {
	ctx := c.Request.Context()

	audioPath, err := h.acquire(c, scope, rec)
	if err != nil {
		return nil, err
	}
	h.recordStart(rec)

	seconds, err := h.tools.Probe(ctx, audioPath)
	if err != nil {
		return nil, h.toolFailure(err, utils.KindDurationProbeFailed, "Failed to get audio length")
	}
	ms := int(seconds * 1000)
	rec.AudioDurationMs = &ms
	if err := media.CheckDuration(seconds, h.cfg.MaxAudioSeconds); err != nil {
		return nil, utils.NewError(utils.KindAudioTooLong,
			fmt.Sprintf("Audio file too long. Max length is %.1f seconds", h.cfg.MaxAudioSeconds), err)
	}

	wavPath, err := scope.Path(".wav")
	if err != nil {
		return nil, err
	}
	if err := h.tools.Transcode(ctx, audioPath, wavPath); err != nil {
		return nil, h.toolFailure(err, utils.KindConversionFailed, "Failed to convert audio file")
	}

	pcm, err := h.normalizer.Normalize(ctx, wavPath, h.recognizer.SampleRate())
	if err != nil {
		return nil, h.toolFailure(err, utils.KindConversionFailed, "Failed to convert audio file")
	}

	meta, err := h.recognizer.Recognize(ctx, lang, pcm, h.cfg.CandidateTranscripts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, utils.NewError(utils.KindRecognitionFailed, "Request cancelled", err)
		}
		return nil, h.toolFailure(err, utils.KindRecognitionFailed, "Failed to recognize audio")
	}

	result := stt.BuildResult(meta)
	rec.Transcript = &result.Full
	if len(result.Transcripts) > 0 {
		conf := result.Transcripts[0].Confidence
		rec.Confidence = &conf
	}
	rec.Metadata["candidates"] = len(result.Transcripts)
	return result, nil
}

// acquire stores the uploaded file, or the file downloaded from ?url=, in
// scope and returns its path.
func (h *Handler) acquire(c *gin.Context, scope *storage.Scope, rec *model.Request) (string, error) {
	fh, err := h.uploadedFile(c)
	if err != nil {
		return "", err
	}

	if fh != nil {
		if !media.AllowedFile(fh.Filename) {
			return "", utils.NewError(utils.KindDisallowedFileType, "Filename not allowed "+fh.Filename, nil)
		}
		ext := media.Extension(fh.Filename)
		path, size, err := scope.SaveMultipart(fh, "."+ext)
		if err != nil {
			return "", err
		}
		rec.Source = model.SourceUpload
		rec.AudioFormat = &ext
		rec.AudioSizeBytes = &size
		rec.Metadata["filename"] = fh.Filename
		return path, nil
	}

	rawURL := c.Query("url")
	if rawURL == "" {
		return "", utils.NewError(utils.KindMissingInput, "No url or file provided", nil)
	}
	name := media.FilenameFromURL(rawURL)
	if !media.AllowedFile(name) {
		return "", utils.NewError(utils.KindDisallowedFileType, "Filename not allowed "+name, nil)
	}
	ext := media.Extension(name)
	path, err := scope.Path("." + ext)
	if err != nil {
		return "", err
	}
	if err := h.tools.Download(c.Request.Context(), rawURL, path, h.cfg.MaxContentLength); err != nil {
		return "", h.toolFailure(err, utils.KindDownloadFailed, "Failed to download file")
	}
	rec.Source = model.SourceURL
	rec.AudioFormat = &ext
	rec.Metadata["filename"] = name
	rec.Metadata["url"] = rawURL
	if fi, err := os.Stat(path); err == nil {
		size := fi.Size()
		rec.AudioSizeBytes = &size
	}
	return path, nil
}

// uploadedFile returns the "file" field of a multipart body, else the file
// of the lexically first field, else nil.
func (h *Handler) uploadedFile(c *gin.Context) (*multipart.FileHeader, error) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, utils.NewError(utils.KindPayloadTooLarge, "File too large", err)
		}
		// not multipart, or an empty body
		return nil, nil
	}
	form := c.Request.MultipartForm
	if form == nil || len(form.File) == 0 {
		return nil, nil
	}
	if files := form.File["file"]; len(files) > 0 {
		return files[0], nil
	}
	fields := make([]string, 0, len(form.File))
	for k := range form.File {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	for _, k := range fields {
		if files := form.File[k]; len(files) > 0 {
			return files[0], nil
		}
	}
	return nil, nil
}

func (h *Handler) cleanup(scope *storage.Scope) {
	if err := scope.Cleanup(); err != nil {
		h.log.Warn("failed to remove temporary files", "error", err)
	}
}
