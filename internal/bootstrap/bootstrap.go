// Package bootstrap builds the agents shared by the API, worker and CLI binaries from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/agents"
	"github.com/snappy-loop/veritas/internal/config"
	"github.com/snappy-loop/veritas/internal/factcheck"
	"github.com/snappy-loop/veritas/internal/llm"
	"github.com/snappy-loop/veritas/internal/media"
	"github.com/snappy-loop/veritas/internal/search"
	"github.com/snappy-loop/veritas/internal/storage"
)

// Vision providers.
const (
	VisionNvidia = "nvidia"
	VisionGemini = "gemini"
)

// SetupLogging configures the global zerolog logger. Unknown levels fall back to info.
func SetupLogging(level string, out io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// SetupDefaultLogging logs to stderr at cfg.LogLevel.
func SetupDefaultLogging(cfg *config.Config) {
	SetupLogging(cfg.LogLevel, os.Stderr)
}

// FactCheckAgent builds the extract/search/validate pipeline.
func FactCheckAgent(ctx context.Context, cfg *config.Config) (agents.FactCheckAgent, error) {
	searcher, err := search.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	gen := llm.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiAPIEndpoint, cfg.GeminiModelPrimary, cfg.GeminiModelFallback)
	pipeline := factcheck.NewPipeline(gen, searcher, factcheck.Options{
		MaxResults:     cfg.MaxSearchResults,
		PartialResults: cfg.FactCheckPartialResults,
	})
	return agents.NewFactCheckAgent(pipeline), nil
}

// SummaryAgent returns nil when no chat API key is configured.
func SummaryAgent(cfg *config.Config) agents.SummaryAgent {
	if cfg.GroqAPIKey == "" {
		return nil
	}
	return agents.NewSummaryAgent(llm.NewChatClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel))
}

// ImageDetectAgent builds the image authenticity agent for cfg.VisionProvider.
// It returns a nil agent when the provider has no credentials. The returned closer is never nil.
func ImageDetectAgent(ctx context.Context, cfg *config.Config) (agents.ImageDetectAgent, io.Closer, error) {
	var scorer llm.ImageScorer
	var closer io.Closer = nopCloser{}

	switch cfg.VisionProvider {
	case VisionNvidia, "":
		if cfg.NvidiaAPIKey == "" {
			return nil, closer, nil
		}
		scorer = llm.NewNvidiaVision(cfg.NvidiaAPIKey, cfg.NvidiaBaseURL, cfg.NvidiaVisionModel)
	case VisionGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, closer, nil
		}
		gv, err := llm.NewGeminiVision(ctx, cfg.GeminiAPIKey, cfg.GeminiAPIEndpoint, cfg.GeminiModelVision)
		if err != nil {
			return nil, closer, err
		}
		scorer, closer = gv, gv
	default:
		return nil, closer, fmt.Errorf("unknown vision provider %q", cfg.VisionProvider)
	}

	var objects media.ObjectStore
	if cfg.S3Enabled() {
		sc, err := storage.NewClient(ctx, cfg.S3Endpoint, cfg.S3Region, cfg.S3Bucket, cfg.S3AccessKey, cfg.S3SecretKey)
		if err != nil {
			closer.Close()
			return nil, nopCloser{}, fmt.Errorf("storage: %w", err)
		}
		objects = sc
	}

	fetcher := media.NewFetcher(&http.Client{Timeout: cfg.HTTPClientTimeout}, objects)
	return agents.NewImageDetectAgent(fetcher, scorer), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
