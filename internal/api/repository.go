package api

import (
	"context"
	"time"

	"github.com/chat-apropo/speech-api/internal/model"
	"github.com/chat-apropo/speech-api/internal/utils"
)

const historyTimeout = 5 * time.Second

// recordStart stores a new history record. Failures are logged and never
// fail the request.
func (h *Handler) recordStart(req *model.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	if err := h.repo.Create(ctx, req); err != nil {
		h.log.Warn("failed to store request history", "id", req.ID, "error", err)
	}
}

// recordFinish stores the outcome of a request started with recordStart.
func (h *Handler) recordFinish(req *model.Request, started time.Time, err error) {
	ms := int(time.Since(started).Milliseconds())
	req.ProcessingTimeMs = &ms
	if err != nil {
		apiErr := utils.AsAPIError(err)
		msg := apiErr.Message
		req.Status = model.StatusFailed
		req.ErrorMessage = &msg
		req.Metadata["error_kind"] = string(apiErr.Kind)
	} else {
		req.Status = model.StatusProcessed
	}

	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	if uerr := h.repo.UpdateResult(ctx, req); uerr != nil {
		h.log.Warn("failed to update request history", "id", req.ID, "error", uerr)
	}
}
