package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/agents"
	"github.com/snappy-loop/veritas/internal/models"
)

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = 2 << 20

// EventPublisher receives the outcome of each fact-check. *kafka.Producer implements it.
type EventPublisher interface {
	PublishFactCheckEvent(ctx context.Context, requestID string, resp *models.FactCheckResponse, err error) error
}

// Handler contains all HTTP handlers
type Handler struct {
	factCheck   agents.FactCheckAgent
	summary     agents.SummaryAgent
	imageDetect agents.ImageDetectAgent
	scraper     agents.ScrapeAgent
	events      EventPublisher
}

// NewHandler creates a new handler. Any agent may be nil, in which case its routes answer 503.
// events may be nil.
func NewHandler(
	factCheck agents.FactCheckAgent,
	summary agents.SummaryAgent,
	imageDetect agents.ImageDetectAgent,
	scraper agents.ScrapeAgent,
	events EventPublisher,
) *Handler {
	return &Handler{
		factCheck:   factCheck,
		summary:     summary,
		imageDetect: imageDetect,
		scraper:     scraper,
		events:      events,
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Server is running",
	})
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched so that
// required-field checks report the missing field.
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

// writeJSONFailure writes {success:false, error, details}.
func writeJSONFailure(w http.ResponseWriter, status int, message, details string) {
	success := false
	writeJSON(w, status, models.ErrorResponse{Success: &success, Error: message, Details: details})
}

func writeJSONErrorDetails(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, models.ErrorResponse{Error: message, Details: details})
}

func writeUnavailable(w http.ResponseWriter, what string) {
	writeJSONError(w, http.StatusServiceUnavailable, what+" not configured")
}
