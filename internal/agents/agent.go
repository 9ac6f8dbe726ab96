// Package agents exposes each capability behind a small interface shared by the HTTP, WebSocket,
// MCP, Kafka and CLI surfaces.
package agents

import (
	"context"

	"github.com/snappy-loop/veritas/internal/factcheck"
	"github.com/snappy-loop/veritas/internal/models"
)

// FactCheckAgent checks the claims in a text. obs may be nil.
type FactCheckAgent interface {
	FactCheck(ctx context.Context, text string, obs factcheck.Observer) (*models.FactCheckResponse, error)
}

// SummaryAgent summarizes content and answers questions about it.
type SummaryAgent interface {
	Summarize(ctx context.Context, content string) (*models.SummarizeResponse, error)
	Answer(ctx context.Context, question, content string) (*models.QAResponse, error)
}

// ImageDetectAgent estimates how likely an image is AI-generated.
type ImageDetectAgent interface {
	DetectAI(ctx context.Context, imageURL string) (*models.ImageDetectResponse, error)
}

// ScrapeAgent extracts a page's article and links. *scrape.Scraper implements it.
type ScrapeAgent interface {
	Scrape(ctx context.Context, url string) (*models.ScrapeResponse, error)
}
