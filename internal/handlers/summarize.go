package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/llm"
	"github.com/snappy-loop/veritas/internal/models"
)

// Summarize handles POST /api/summarize
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		writeJSONError(w, http.StatusBadRequest, "Content is required")
		return
	}
	if h.summary == nil {
		writeUnavailable(w, "summarization")
		return
	}

	resp, err := h.summary.Summarize(r.Context(), req.Content)
	if err != nil {
		log.Error().Err(err).Msg("Summarization failed")
		writeChatError(w, err, "Failed to summarize content")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Answer handles POST /api/qa
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	var req models.QARequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" || req.Content == "" {
		writeJSONError(w, http.StatusBadRequest, "Both question and content are required")
		return
	}
	if h.summary == nil {
		writeUnavailable(w, "question answering")
		return
	}

	resp, err := h.summary.Answer(r.Context(), req.Question, req.Content)
	if err != nil {
		log.Error().Err(err).Msg("Q&A failed")
		writeChatError(w, err, "Failed to answer question")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeChatError mirrors upstream 401/429 and reports anything else as a 500 with details.
func writeChatError(w http.ResponseWriter, err error, failure string) {
	switch {
	case errors.Is(err, llm.ErrChatUnauthorized):
		writeJSONFailure(w, http.StatusUnauthorized, "Invalid Groq API key. Please check your configuration.", "")
	case errors.Is(err, llm.ErrChatRateLimited):
		writeJSONFailure(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", "")
	default:
		writeJSONFailure(w, http.StatusInternalServerError, failure, err.Error())
	}
}
