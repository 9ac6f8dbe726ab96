package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/agents"
	"github.com/snappy-loop/veritas/internal/bootstrap"
	"github.com/snappy-loop/veritas/internal/config"
	"github.com/snappy-loop/veritas/internal/handlers"
	"github.com/snappy-loop/veritas/internal/kafka"
	"github.com/snappy-loop/veritas/internal/mcpserver"
	"github.com/snappy-loop/veritas/internal/scrape"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	bootstrap.SetupDefaultLogging(cfg)

	log.Info().Str("version", version).Msg("Starting Veritas API")

	ctx := context.Background()

	factCheck, err := bootstrap.FactCheckAgent(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Fact-checking disabled")
	}

	summary := bootstrap.SummaryAgent(cfg)
	if summary == nil {
		log.Warn().Msg("Summarize and Q&A disabled: GROQ_API_KEY not set")
	}

	imageDetect, visionCloser, err := bootstrap.ImageDetectAgent(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize image detection")
	}
	defer visionCloser.Close()
	if imageDetect == nil {
		log.Warn().Str("provider", cfg.VisionProvider).Msg("Image detection disabled: no API key for vision provider")
	}

	var scraper agents.ScrapeAgent = scrape.New(cfg.ScrapeUserAgent, cfg.ScrapeTimeout)

	var events handlers.EventPublisher
	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicEvents)
		defer producer.Close()
		events = producer
	}

	h := handlers.NewHandler(factCheck, summary, imageDetect, scraper, events)
	mcp := mcpserver.NewServer(version, factCheck, summary, imageDetect)

	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     h.Router(mcp.Handler()),
		ReadTimeout: 15 * time.Second,
		// fact-checks make one search and one model call per claim; no write deadline
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down API...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("API exited")
}
