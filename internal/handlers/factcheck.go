package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/factcheck"
	"github.com/snappy-loop/veritas/internal/models"
)

// FactCheck handles POST /api/factcheck
func (h *Handler) FactCheck(w http.ResponseWriter, r *http.Request) {
	var req models.FactCheckRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeJSONError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if h.factCheck == nil {
		writeUnavailable(w, "fact-checking")
		return
	}

	resp, err := h.factCheck.FactCheck(r.Context(), req.Text, nil)
	h.publish(r.Context(), resp, err)
	if err != nil {
		if errors.Is(err, factcheck.ErrMissingInput) {
			writeJSONError(w, http.StatusBadRequest, "Text is required")
			return
		}
		writeJSONErrorDetails(w, http.StatusInternalServerError, "Fact-checking failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// publish reports the outcome on the event stream, if one is configured. Failures are logged only.
func (h *Handler) publish(ctx context.Context, resp *models.FactCheckResponse, err error) {
	if h.events == nil {
		return
	}
	requestID := RequestIDFromContext(ctx)
	// the request context may already be cancelled; the event should still go out
	if pubErr := h.events.PublishFactCheckEvent(context.WithoutCancel(ctx), requestID, resp, err); pubErr != nil {
		log.Warn().Err(pubErr).Str("request_id", requestID).Msg("Failed to publish fact-check event")
	}
}
