package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router builds the API router. mcp may be nil to leave /mcp unmounted.
func (h *Handler) Router(mcp http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID, AccessLog, CORS)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/factcheck", h.FactCheck).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/factcheck/ws", h.FactCheckWS).Methods(http.MethodGet)
	api.HandleFunc("/summarize", h.Summarize).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/qa", h.Answer).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/image-detect-ai", h.DetectImageAI).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/scrape", h.Scrape).Methods(http.MethodPost, http.MethodOptions)

	if mcp != nil {
		r.Handle("/mcp", mcp).Methods(http.MethodPost, http.MethodOptions)
	}
	return r
}
