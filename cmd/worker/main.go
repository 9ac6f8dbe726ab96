package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/bootstrap"
	"github.com/snappy-loop/veritas/internal/config"
	"github.com/snappy-loop/veritas/internal/kafka"
	"github.com/snappy-loop/veritas/internal/processor"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	bootstrap.SetupDefaultLogging(cfg)

	log.Info().Msg("Starting Veritas Worker")

	if !cfg.KafkaEnabled() {
		log.Fatal().Msg("KAFKA_BROKERS is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factCheck, err := bootstrap.FactCheckAgent(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize fact-check pipeline")
	}

	results := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicResults)
	defer results.Close()

	proc := processor.NewFactCheckProcessor(factCheck, results)
	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopicRequests, cfg.KafkaConsumerGroup, proc)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Kafka consumer error")
		}
	}()

	log.Info().Msg("Worker started, consuming messages...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-done:
	}

	log.Info().Msg("Shutting down worker...")
	cancel()
	<-done

	if err := consumer.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close consumer")
	}
	log.Info().Msg("Worker exited")
}
