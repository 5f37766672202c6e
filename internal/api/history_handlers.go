package api

import (
	"errors"
	"strconv"
	"unicode/utf8"

	"github.com/chat-apropo/speech-api/internal/model"
	"github.com/chat-apropo/speech-api/internal/repository"
	"github.com/chat-apropo/speech-api/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const previewRunes = 100

// listHistory handles GET /history?kind=&limit=&offset=
func (h *Handler) listHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100 // Max limit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	kind := c.Query("kind")
	if kind != "" && kind != model.KindSTT && kind != model.KindTTS {
		h.fail(c, utils.NewError(utils.KindMissingInput, "kind must be stt or tts", nil))
		return
	}

	requests, err := h.repo.List(c.Request.Context(), kind, limit, offset)
	if err != nil {
		h.fail(c, utils.NewError(utils.KindInternal, "failed to retrieve history", err))
		return
	}

	items := make([]gin.H, 0, len(requests))
	for _, req := range requests {
		item := gin.H{
			"id":         req.ID.String(),
			"kind":       req.Kind,
			"language":   req.Language,
			"engine":     req.Engine,
			"status":     req.Status,
			"created_at": req.CreatedAt,
		}
		if req.AudioFormat != nil {
			item["audio_format"] = *req.AudioFormat
		}
		if req.AudioDurationMs != nil {
			item["audio_duration_ms"] = *req.AudioDurationMs
		}

		// Add transcript preview (first 100 runes)
		if req.Transcript != nil && *req.Transcript != "" {
			item["transcript_preview"] = preview(*req.Transcript)
		}
		items = append(items, item)
	}

	utils.Success(c, gin.H{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"count":  len(items),
	})
}

// getHistory handles GET /history/:id
func (h *Handler) getHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.fail(c, utils.NewError(utils.KindMissingInput, "invalid id format", err))
		return
	}

	req, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		h.fail(c, utils.NewError(utils.KindNotFound, "request not found", err))
		return
	}
	if err != nil {
		h.fail(c, utils.NewError(utils.KindInternal, "failed to retrieve request", err))
		return
	}
	utils.Success(c, req)
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	return string([]rune(s)[:previewRunes]) + "..."
}
