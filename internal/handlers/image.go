package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/llm"
	"github.com/snappy-loop/veritas/internal/media"
	"github.com/snappy-loop/veritas/internal/models"
)

// DetectImageAI handles POST /api/image-detect-ai
func (h *Handler) DetectImageAI(w http.ResponseWriter, r *http.Request) {
	var req models.ImageDetectRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeJSONError(w, http.StatusBadRequest, "Image URL is required")
		return
	}
	if h.imageDetect == nil {
		writeUnavailable(w, "image detection")
		return
	}

	resp, err := h.imageDetect.DetectAI(r.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrNotImage):
			writeJSONError(w, http.StatusBadRequest, "Invalid image format.")
		case errors.Is(err, llm.ErrImageTooLarge), errors.Is(err, media.ErrTooLarge):
			writeJSONError(w, http.StatusBadRequest, "Image too large for direct upload. Use NVIDIA assets API.")
		default:
			log.Error().Err(err).Str("url", req.URL).Msg("Image detection failed")
			writeJSONErrorDetails(w, http.StatusInternalServerError, "Image detection failed", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
