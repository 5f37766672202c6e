package api

import (
	"net/http"
	"strconv"

	"github.com/chat-apropo/speech-api/internal/config"
	"github.com/chat-apropo/speech-api/internal/logger"
	"github.com/chat-apropo/speech-api/internal/media"
	"github.com/chat-apropo/speech-api/internal/repository"
	"github.com/chat-apropo/speech-api/internal/stt"
	"github.com/chat-apropo/speech-api/internal/tts"
	"github.com/chat-apropo/speech-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Config      *config.Config
	Log         *logger.Logger
	Tools       media.Tools
	Registry    *stt.Registry
	Recognizer  stt.Recognizer
	Synthesizer tts.Synthesizer
	Repo        repository.RequestRepository
}

type Handler struct {
	cfg         *config.Config
	log         *logger.Logger
	tools       media.Tools
	normalizer  *media.Normalizer
	registry    *stt.Registry
	recognizer  stt.Recognizer
	synthesizer tts.Synthesizer
	repo        repository.RequestRepository
}

func NewHandler(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewNop()
	}
	repo := d.Repo
	if repo == nil {
		repo = repository.NewMemoryRepository(d.Config.HistoryMaxRecords)
	}
	return &Handler{
		cfg:         d.Config,
		log:         log,
		tools:       d.Tools,
		normalizer:  media.NewNormalizer(d.Tools, log),
		registry:    d.Registry,
		recognizer:  d.Recognizer,
		synthesizer: d.Synthesizer,
		repo:        repo,
	}
}

// RegisterRoutes installs the middleware chain and every route. All routes,
// including health, require the bearer token.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.Use(
		RequestID(),
		RequestLogger(h.log),
		Recovery(h.log),
		CORS(h.cfg.CORSOrigins),
		BearerAuth(h.cfg.BearerToken, h.cfg.StrictHTTPStatus),
	)

	r.GET("/health", h.healthCheck)
	r.GET("/version", h.version)

	r.GET("/stt/languages", h.sttLanguages)
	r.POST("/stt/:lang", h.speechToText)

	r.GET("/tts/languages", h.ttsLanguages)
	r.POST("/tts/:lang", h.textToSpeech)

	r.GET("/history", h.listHistory)
	r.GET("/history/:id", h.getHistory)
}

// healthCheck returns server health status
func (h *Handler) healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":     "ok",
		"service":    "speech-api",
		"stt_engine": h.recognizer.Name(),
		"tts_engine": h.synthesizer.Name(),
	})
}

// version returns the recognizer version as plain text
func (h *Handler) version(c *gin.Context) {
	v, err := h.recognizer.Version(c.Request.Context())
	if err != nil {
		h.fail(c, h.toolFailure(err, utils.KindRecognitionFailed, "Failed to get version"))
		return
	}
	c.String(http.StatusOK, v)
}

func (h *Handler) sttLanguages(c *gin.Context) {
	langs, err := h.registry.Languages()
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, langs)
}

func (h *Handler) ttsLanguages(c *gin.Context) {
	utils.Success(c, tts.Languages())
}

// fail logs err with its cause and renders the user-facing message.
func (h *Handler) fail(c *gin.Context, err error) {
	apiErr := utils.AsAPIError(err)
	fields := []interface{}{
		"request_id", c.GetString(requestIDKey),
		"path", c.FullPath(),
		"kind", apiErr.Kind,
		"error", apiErr.Error(),
	}
	if apiErr.Kind == utils.KindInternal || apiErr.Kind == utils.KindToolNotFound {
		h.log.Error("request failed", fields...)
	} else {
		h.log.Warn("request failed", fields...)
	}
	utils.Fail(c, h.cfg.StrictHTTPStatus, apiErr)
}

// toolFailure maps a media.ToolError for a missing binary to
// KindToolNotFound and anything else to kind with msg.
func (h *Handler) toolFailure(err error, kind utils.Kind, msg string) error {
	if tool, ok := media.IsToolNotFound(err); ok {
		if tool == "sox" {
			return utils.NewError(utils.KindToolNotFound,
				tool+" not found, use "+strconv.Itoa(h.recognizer.SampleRate())+"hz files or install it", err)
		}
		return utils.NewError(utils.KindToolNotFound, tool+" not found, install it", err)
	}
	return utils.NewError(kind, msg, err)
}
