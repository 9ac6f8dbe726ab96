package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/models"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const providerGoogle = "Google"

// CustomSearch queries the Google Custom Search JSON API.
type CustomSearch struct {
	svc      *customsearch.Service
	engineID string
	limit    int
}

// NewCustomSearch creates a Custom Search client for the given engine (cx).
// Extra options are passed to the service (e.g. option.WithEndpoint for a proxy).
func NewCustomSearch(ctx context.Context, apiKey, engineID string, limit int, opts ...option.ClientOption) (*CustomSearch, error) {
	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("customsearch service: %w", err)
	}
	log.Info().
		Str("engine_id", engineID).
		Int("limit", clampLimit(limit)).
		Msg("Custom Search client initialized")
	return &CustomSearch{svc: svc, engineID: engineID, limit: clampLimit(limit)}, nil
}

// Search implements Searcher.
func (c *CustomSearch) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	log.Info().Str("query", query).Msg("Searching web")

	resp, err := c.svc.Cse.List().Cx(c.engineID).Q(query).Num(int64(c.limit)).Context(ctx).Do()
	if err != nil {
		apiErr := &APIError{Provider: providerGoogle, Err: err}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			apiErr.StatusCode = gerr.Code
		}
		log.Error().Err(err).Int("status", apiErr.StatusCode).Msg("Google search failed")
		return nil, apiErr
	}

	results := resultsFromItems(resp.Items, c.limit)
	log.Info().Int("results", len(results)).Msg("Search complete")
	return results, nil
}

// resultsFromItems maps Custom Search items to SearchResults, keeping at most limit.
func resultsFromItems(items []*customsearch.Result, limit int) []models.SearchResult {
	out := make([]models.SearchResult, 0, min(len(items), limit))
	for _, item := range items {
		if item == nil {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, models.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return out
}
