package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// errMalformed marks messages that can never succeed and are skipped without retry.
var errMalformed = errors.New("malformed message")

// messageReader is the subset of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageHandler processes fact-check requests
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *FactCheckRequestMessage) error
}

// retryPolicy bounds redelivery of a failing message.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

func (p retryPolicy) delay(attempt int) time.Duration {
	d := p.baseDelay * time.Duration(1<<uint(min(attempt, 10)))
	if d > p.maxDelay {
		d = p.maxDelay
	}
	return d
}

var defaultRetryPolicy = retryPolicy{maxAttempts: 5, baseDelay: time.Second, maxDelay: time.Minute}

// Consumer wraps a Kafka consumer
type Consumer struct {
	reader  messageReader
	handler MessageHandler
	retry   retryPolicy
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(brokers []string, topic, groupID string, handler MessageHandler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: 0,    // manual commits
		StartOffset:    kafka.FirstOffset,
	})

	log.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Str("group_id", groupID).
		Msg("Kafka consumer initialized")

	return &Consumer{
		reader:  reader,
		handler: handler,
		retry:   defaultRetryPolicy,
	}
}

// Start consumes messages until ctx is cancelled.
// Each message is retried with exponential backoff and committed once it succeeds or is given up on.
func (c *Consumer) Start(ctx context.Context) error {
	log.Info().Msg("Starting Kafka consumer")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("Consumer context cancelled, stopping")
				return ctx.Err()
			}
			log.Error().Err(err).Msg("Failed to fetch message")
			continue
		}

		if err := c.processWithRetry(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().
				Err(err).
				Str("topic", msg.Topic).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("Message processing failed, skipping")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Error().Err(err).Msg("Failed to commit message")
		}
	}
}

func (c *Consumer) processWithRetry(ctx context.Context, msg kafka.Message) error {
	var lastErr error
	for attempt := 0; attempt < c.retry.maxAttempts; attempt++ {
		lastErr = c.processMessage(ctx, msg)
		if lastErr == nil || errors.Is(lastErr, errMalformed) {
			return lastErr
		}

		log.Warn().
			Err(lastErr).
			Int64("offset", msg.Offset).
			Int("attempt", attempt+1).
			Int("max_attempts", c.retry.maxAttempts).
			Msg("Failed to process message, will retry")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retry.delay(attempt)):
		}
	}
	return lastErr
}

// processMessage processes a single Kafka message
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	log.Debug().
		Str("topic", msg.Topic).
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Msg("Processing message")

	var req FactCheckRequestMessage
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("%w: %w", errMalformed, err)
	}
	if req.RequestID == "" {
		req.RequestID = string(msg.Key)
	}

	if err := c.handler.HandleMessage(ctx, &req); err != nil {
		return fmt.Errorf("handler error: %w", err)
	}

	log.Info().
		Str("request_id", req.RequestID).
		Msg("Message processed successfully")

	return nil
}

// Close closes the consumer
func (c *Consumer) Close() error {
	log.Info().Msg("Closing Kafka consumer")
	return c.reader.Close()
}
