package kafka

import (
	"time"

	"github.com/snappy-loop/veritas/internal/models"
)

// Result statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Event types published once per fact-check.
const (
	EventFactCheckCompleted = "factcheck.completed"
	EventFactCheckFailed    = "factcheck.failed"
)

// FactCheckRequestMessage asks the worker to fact-check a text.
type FactCheckRequestMessage struct {
	RequestID string `json:"request_id"`
	Text      string `json:"text"`
}

// FactCheckResultMessage carries a worker outcome. Result is set only on success.
// A failed request never carries partial claims.
type FactCheckResultMessage struct {
	RequestID string                    `json:"request_id"`
	Status    string                    `json:"status"`
	Result    *models.FactCheckResponse `json:"result,omitempty"`
	Error     string                    `json:"error,omitempty"`
	Details   string                    `json:"details,omitempty"`
}

// FactCheckEvent is a summary of one fact-check, published for downstream consumers.
type FactCheckEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	RequestID  string    `json:"request_id,omitempty"`
	ClaimCount int       `json:"claim_count"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
