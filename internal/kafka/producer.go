package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/snappy-loop/veritas/internal/models"
)

// messageWriter is the subset of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer wraps a Kafka producer bound to one topic
type Producer struct {
	writer messageWriter
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		Async:                  false,
	}

	log.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("Kafka producer initialized")

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishResult publishes a worker result keyed by request id.
func (p *Producer) PublishResult(ctx context.Context, msg *FactCheckResultMessage) error {
	if err := p.publish(ctx, msg.RequestID, msg); err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}

	log.Info().
		Str("request_id", msg.RequestID).
		Str("status", msg.Status).
		Str("topic", p.topic).
		Msg("Fact-check result published to Kafka")

	return nil
}

// PublishFactCheckEvent publishes a completed or failed event for one fact-check.
func (p *Producer) PublishFactCheckEvent(ctx context.Context, requestID string, resp *models.FactCheckResponse, runErr error) error {
	ev := FactCheckEvent{
		EventID:    uuid.NewString(),
		Type:       EventFactCheckCompleted,
		RequestID:  requestID,
		OccurredAt: time.Now().UTC(),
	}
	if runErr != nil {
		ev.Type = EventFactCheckFailed
		ev.Error = runErr.Error()
	} else if resp != nil {
		ev.ClaimCount = len(resp.Claims)
	}

	key := requestID
	if key == "" {
		key = ev.EventID
	}
	if err := p.publish(ctx, key, ev); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().
		Str("request_id", requestID).
		Str("event", ev.Type).
		Str("topic", p.topic).
		Msg("Fact-check event published to Kafka")

	return nil
}

func (p *Producer) publish(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data}); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close closes the producer
func (p *Producer) Close() error {
	log.Info().Str("topic", p.topic).Msg("Closing Kafka producer")
	return p.writer.Close()
}
