package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/models"
	unifiedgenai "google.golang.org/genai"
)

const providerGrounding = "Gemini grounding"

const groundingPrompt = `Search the web for reliable sources about the following statement and briefly report what they say about it.

Statement: %s`

// Grounded uses Gemini with the Google Search tool and turns grounding metadata into results:
// each web grounding chunk is a result, and the response segments it supports are its snippet.
type Grounded struct {
	client *unifiedgenai.Client
	model  string
	limit  int
}

// NewGrounded creates a grounding-backed Searcher. apiEndpoint may be empty.
func NewGrounded(ctx context.Context, apiKey, apiEndpoint, model string, limit int) (*Grounded, error) {
	cfg := &unifiedgenai.ClientConfig{APIKey: apiKey, Backend: unifiedgenai.BackendGeminiAPI}
	if apiEndpoint != "" {
		cfg.HTTPOptions = unifiedgenai.HTTPOptions{BaseURL: apiEndpoint}
	}
	client, err := unifiedgenai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	log.Info().Str("model", model).Int("limit", clampLimit(limit)).Msg("Grounded search client initialized")
	return &Grounded{client: client, model: model, limit: clampLimit(limit)}, nil
}

// Search implements Searcher.
func (g *Grounded) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	log.Info().Str("query", query).Str("model", g.model).Msg("Searching web via grounding")

	config := &unifiedgenai.GenerateContentConfig{
		Tools: []*unifiedgenai.Tool{
			{GoogleSearch: &unifiedgenai.GoogleSearch{}},
		},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, unifiedgenai.Text(fmt.Sprintf(groundingPrompt, query)), config)
	if err != nil {
		log.Error().Err(err).Msg("Grounded search failed")
		return nil, &APIError{Provider: providerGrounding, Err: err}
	}

	results := resultsFromGrounding(resp, g.limit)
	log.Info().Int("results", len(results)).Msg("Search complete")
	return results, nil
}

func resultsFromGrounding(resp *unifiedgenai.GenerateContentResponse, limit int) []models.SearchResult {
	var out []models.SearchResult
	if resp == nil {
		return out
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.GroundingMetadata == nil {
			continue
		}
		md := cand.GroundingMetadata

		snippets := make(map[int][]string)
		for _, support := range md.GroundingSupports {
			if support == nil || support.Segment == nil {
				continue
			}
			text := strings.TrimSpace(support.Segment.Text)
			if text == "" {
				continue
			}
			for _, idx := range support.GroundingChunkIndices {
				snippets[int(idx)] = append(snippets[int(idx)], text)
			}
		}

		for i, chunk := range md.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			out = append(out, models.SearchResult{
				Title:   chunk.Web.Title,
				Link:    chunk.Web.URI,
				Snippet: strings.Join(snippets[i], " "),
			})
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
