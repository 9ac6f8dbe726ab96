// Package search looks up web sources for a single query.
package search

import (
	"context"
	"fmt"

	"github.com/snappy-loop/veritas/internal/models"
)

// MaxResults is the most results any provider returns for one query.
const MaxResults = 5

// Searcher runs one web search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// APIError is returned for any transport, status or provider failure. There is no retry.
type APIError struct {
	Provider   string
	StatusCode int // 0 when the failure happened before a response
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s search API failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s search API failed: %v", e.Provider, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// clampLimit keeps a configured result count within 1..MaxResults.
func clampLimit(n int) int {
	if n < 1 || n > MaxResults {
		return MaxResults
	}
	return n
}
