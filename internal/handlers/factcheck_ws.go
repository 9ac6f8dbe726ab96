package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/factcheck"
	"github.com/snappy-loop/veritas/internal/models"
)

const (
	factCheckWSReadLimit = 256 << 10
	factCheckWSIdle      = 10 * time.Minute
)

var factCheckWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// factCheckWSInMessage is the JSON shape sent from the client.
type factCheckWSInMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// factCheckWSOutMessage is the JSON shape sent to the client.
type factCheckWSOutMessage struct {
	Type    string                    `json:"type"`
	Stage   factcheck.Stage           `json:"stage,omitempty"`
	Index   int                       `json:"index,omitempty"`
	Total   int                       `json:"total,omitempty"`
	Result  *models.FactCheckResponse `json:"result,omitempty"`
	Error   string                    `json:"error,omitempty"`
	Details string                    `json:"details,omitempty"`
}

// FactCheckWS handles GET /api/factcheck/ws. It runs fact-checks and streams stage progress.
// Each {"type":"check"} message gets progress messages followed by one result or error message.
func (h *Handler) FactCheckWS(w http.ResponseWriter, r *http.Request) {
	if h.factCheck == nil {
		http.Error(w, "fact-checking not configured", http.StatusServiceUnavailable)
		return
	}
	conn, err := factCheckWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("factcheck ws upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(factCheckWSReadLimit)
	conn.SetReadDeadline(time.Now().Add(factCheckWSIdle))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(factCheckWSIdle))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("factcheck ws read")
			}
			return
		}

		var in factCheckWSInMessage
		if err := json.Unmarshal(raw, &in); err != nil {
			_ = writeWSJSON(conn, factCheckWSOutMessage{Type: "error", Error: "invalid JSON", Details: err.Error()})
			continue
		}
		if in.Type != "check" {
			_ = writeWSJSON(conn, factCheckWSOutMessage{Type: "error", Error: "expected type: check"})
			continue
		}
		if in.Text == "" {
			_ = writeWSJSON(conn, factCheckWSOutMessage{Type: "error", Error: "Text is required"})
			continue
		}

		progress := func(ev factcheck.Event) {
			if ev.Stage == factcheck.StageFailed {
				return
			}
			if err := writeWSJSON(conn, factCheckWSOutMessage{Type: "progress", Stage: ev.Stage, Index: ev.Index, Total: ev.Total}); err != nil {
				log.Debug().Err(err).Msg("factcheck ws progress write")
			}
		}
		resp, runErr := h.factCheck.FactCheck(r.Context(), in.Text, progress)
		h.publish(r.Context(), resp, runErr)

		out := factCheckWSOutMessage{Type: "result", Result: resp}
		if runErr != nil {
			out = factCheckWSOutMessage{Type: "error", Error: "Fact-checking failed", Details: runErr.Error()}
		}
		if err := writeWSJSON(conn, out); err != nil {
			log.Debug().Err(err).Msg("factcheck ws write")
			return
		}
		conn.SetReadDeadline(time.Now().Add(factCheckWSIdle))
	}
}

func writeWSJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	return conn.WriteJSON(v)
}
