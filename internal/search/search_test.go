package search

import (
	"errors"
	"fmt"
	"testing"

	"github.com/snappy-loop/veritas/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/customsearch/v1"
	unifiedgenai "google.golang.org/genai"
)

func TestResultsFromItems_BoundedAndOrdered(t *testing.T) {
	var items []*customsearch.Result
	for i := 1; i <= 8; i++ {
		items = append(items, &customsearch.Result{
			Title:   fmt.Sprintf("t%d", i),
			Link:    fmt.Sprintf("https://example.org/%d", i),
			Snippet: fmt.Sprintf("s%d", i),
		})
	}
	items[1] = nil

	got := resultsFromItems(items, 5)

	require.Len(t, got, 5)
	assert.Equal(t, models.SearchResult{Title: "t1", Link: "https://example.org/1", Snippet: "s1"}, got[0])
	assert.Equal(t, "t3", got[1].Title)
	assert.Equal(t, "t6", got[4].Title)
}

func TestResultsFromItems_Empty(t *testing.T) {
	got := resultsFromItems(nil, 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestResultsFromGrounding(t *testing.T) {
	resp := &unifiedgenai.GenerateContentResponse{
		Candidates: []*unifiedgenai.Candidate{{
			GroundingMetadata: &unifiedgenai.GroundingMetadata{
				GroundingChunks: []*unifiedgenai.GroundingChunk{
					{Web: &unifiedgenai.GroundingChunkWeb{Title: "britannica.com", URI: "https://vertex/redirect/1"}},
					{},
					{Web: &unifiedgenai.GroundingChunkWeb{Title: "wikipedia.org", URI: "https://vertex/redirect/2"}},
				},
				GroundingSupports: []*unifiedgenai.GroundingSupport{
					{Segment: &unifiedgenai.Segment{Text: "Paris is the capital."}, GroundingChunkIndices: []int32{0, 2}},
					{Segment: &unifiedgenai.Segment{Text: "It has been since 508."}, GroundingChunkIndices: []int32{0}},
					{Segment: nil, GroundingChunkIndices: []int32{2}},
				},
			},
		}},
	}

	got := resultsFromGrounding(resp, 5)

	require.Len(t, got, 2)
	assert.Equal(t, "britannica.com", got[0].Title)
	assert.Equal(t, "https://vertex/redirect/1", got[0].Link)
	assert.Equal(t, "Paris is the capital. It has been since 508.", got[0].Snippet)
	assert.Equal(t, "Paris is the capital.", got[1].Snippet)

	assert.Len(t, resultsFromGrounding(resp, 1), 1)
	assert.Empty(t, resultsFromGrounding(nil, 5))
}

func TestAPIError(t *testing.T) {
	cause := errors.New("quota")
	err := &APIError{Provider: "Google", StatusCode: 429, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Google search API failed (status 429): quota", err.Error())
	assert.Equal(t, "Google search API failed: quota", (&APIError{Provider: "Google", Err: cause}).Error())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 5, clampLimit(0))
	assert.Equal(t, 3, clampLimit(3))
	assert.Equal(t, 5, clampLimit(50))
}
