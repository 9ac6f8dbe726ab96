package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/models"
	"github.com/snappy-loop/veritas/internal/scrape"
)

// Scrape handles POST /api/scrape
func (h *Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	var req models.ScrapeRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeJSONError(w, http.StatusBadRequest, "URL is required")
		return
	}
	if h.scraper == nil {
		writeUnavailable(w, "scraping")
		return
	}

	resp, err := h.scraper.Scrape(r.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, scrape.ErrInvalidURL):
			writeJSONError(w, http.StatusBadRequest, "Invalid URL")
		case errors.Is(err, scrape.ErrDisallowed):
			writeJSONError(w, http.StatusForbidden, "Fetching disallowed by robots.txt")
		default:
			log.Error().Err(err).Str("url", req.URL).Msg("Scraping failed")
			writeJSONErrorDetails(w, http.StatusInternalServerError, "Scraping failed", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
