package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"github.com/chat-apropo/speech-api/internal/model"
	"github.com/chat-apropo/speech-api/internal/storage"
	"github.com/chat-apropo/speech-api/internal/tts"
	"github.com/chat-apropo/speech-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// textToSpeech handles POST /tts/:lang and streams back a WAV file.
func (h *Handler) textToSpeech(c *gin.Context) {
	lang := c.Param("lang")
	if !tts.Supported(lang) {
		h.fail(c, utils.NewError(utils.KindUnsupportedLanguage, "Language not supported", nil))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxContentLength)
	text, err := formText(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if text == "" {
		h.fail(c, utils.NewError(utils.KindMissingInput, "No text provided", nil))
		return
	}
	if utf8.RuneCountInString(text) > h.cfg.MaxTTSTextLength {
		h.fail(c, utils.NewError(utils.KindTextTooLong,
			fmt.Sprintf("Text too long. Max length is %d characters", h.cfg.MaxTTSTextLength), nil))
		return
	}

	scope := storage.NewScope(h.cfg.TempDir)
	defer h.cleanup(scope)

	started := time.Now()
	rec := model.NewRequest(model.KindTTS, lang, h.synthesizer.Name(), model.SourceText)
	rec.Metadata["request_id"] = c.GetString(requestIDKey)
	rec.Metadata["text_length"] = utf8.RuneCountInString(text)
	h.recordStart(rec)

	f, size, err := h.synthesize(c, scope, lang, text)
	if err != nil {
		h.recordFinish(rec, started, err)
		h.fail(c, err)
		return
	}
	// runs before the scope cleanup above
	defer f.Close()

	format := "wav"
	rec.AudioFormat = &format
	rec.AudioSizeBytes = &size
	h.recordFinish(rec, started, nil)

	c.DataFromReader(http.StatusOK, size, "audio/wav", f, nil)
}

func (h *Handler) synthesize(c *gin.Context, scope *storage.Scope, lang, text string) (*os.File, int64, error) {
	out, err := scope.Path(".wav")
	if err != nil {
		return nil, 0, err
	}
	if err := h.synthesizer.Synthesize(c.Request.Context(), lang, text, out); err != nil {
		return nil, 0, h.toolFailure(err, utils.KindSynthesisFailed, "Failed to generate audio file")
	}

	f, err := os.Open(out)
	if err != nil {
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	if fi.Size() == 0 {
		f.Close()
		return nil, 0, utils.NewError(utils.KindSynthesisFailed, "Failed to generate audio file", errors.New("synthesizer produced no audio"))
	}
	return f, fi.Size(), nil
}

// formText reads the "text" field from a urlencoded or multipart body.
func formText(c *gin.Context) (string, error) {
	err := c.Request.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = c.Request.ParseForm()
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "", utils.NewError(utils.KindPayloadTooLarge, "Text too large", err)
	}
	return c.Request.PostFormValue("text"), nil
}
