package processor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/agents"
	"github.com/snappy-loop/veritas/internal/factcheck"
	"github.com/snappy-loop/veritas/internal/kafka"
)

// ResultPublisher delivers worker results.
type ResultPublisher interface {
	PublishResult(ctx context.Context, msg *kafka.FactCheckResultMessage) error
}

// FactCheckProcessor runs queued fact-check requests and publishes one result per request.
type FactCheckProcessor struct {
	agent   agents.FactCheckAgent
	results ResultPublisher
}

// NewFactCheckProcessor creates a new fact-check processor
func NewFactCheckProcessor(agent agents.FactCheckAgent, results ResultPublisher) *FactCheckProcessor {
	return &FactCheckProcessor{
		agent:   agent,
		results: results,
	}
}

// HandleMessage processes a request end-to-end.
// A failed fact-check is reported as a failed result, not returned; only a publish failure is retried.
func (p *FactCheckProcessor) HandleMessage(ctx context.Context, msg *kafka.FactCheckRequestMessage) error {
	log.Info().Str("request_id", msg.RequestID).Msg("Starting fact-check")

	result := p.process(ctx, msg)
	if err := p.results.PublishResult(ctx, result); err != nil {
		return fmt.Errorf("publish result for %s: %w", msg.RequestID, err)
	}
	return nil
}

func (p *FactCheckProcessor) process(ctx context.Context, msg *kafka.FactCheckRequestMessage) *kafka.FactCheckResultMessage {
	out := &kafka.FactCheckResultMessage{RequestID: msg.RequestID}

	if msg.Text == "" {
		out.Status = kafka.StatusFailed
		out.Error = "Text is required"
		return out
	}

	resp, err := p.agent.FactCheck(ctx, msg.Text, func(ev factcheck.Event) {
		log.Debug().
			Str("request_id", msg.RequestID).
			Str("stage", string(ev.Stage)).
			Int("index", ev.Index).
			Int("total", ev.Total).
			Msg("Fact-check progress")
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", msg.RequestID).
			Msg("Fact-check failed")
		out.Status = kafka.StatusFailed
		out.Error = "Fact-checking failed"
		out.Details = err.Error()
		return out
	}

	log.Info().
		Str("request_id", msg.RequestID).
		Int("claims", len(resp.Claims)).
		Msg("Fact-check completed")

	out.Status = kafka.StatusCompleted
	out.Result = resp
	return out
}
