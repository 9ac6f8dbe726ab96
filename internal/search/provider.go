package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/snappy-loop/veritas/internal/config"
)

const (
	ProviderGoogleCSE       = "google_cse"
	ProviderGeminiGrounding = "gemini_grounding"
)

// ErrNotConfigured is returned when the selected provider is missing credentials.
var ErrNotConfigured = errors.New("search provider not configured")

// New builds the Searcher selected by cfg.SearchProvider.
func New(ctx context.Context, cfg *config.Config) (Searcher, error) {
	switch cfg.SearchProvider {
	case ProviderGoogleCSE, "":
		if cfg.GoogleSearchAPIKey == "" || cfg.GoogleSearchEngineID == "" {
			return nil, fmt.Errorf("%w: GOOGLE_SEARCH_API_KEY and GOOGLE_SEARCH_ENGINE_ID are required", ErrNotConfigured)
		}
		return NewCustomSearch(ctx, cfg.GoogleSearchAPIKey, cfg.GoogleSearchEngineID, cfg.MaxSearchResults)
	case ProviderGeminiGrounding:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY is required", ErrNotConfigured)
		}
		return NewGrounded(ctx, cfg.GeminiAPIKey, cfg.GeminiAPIEndpoint, cfg.GeminiModelGrounding, cfg.MaxSearchResults)
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.SearchProvider)
	}
}
