package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/snappy-loop/veritas/internal/agents"
	"github.com/snappy-loop/veritas/internal/factcheck"
	"github.com/snappy-loop/veritas/internal/llm"
	"github.com/snappy-loop/veritas/internal/media"
	"github.com/snappy-loop/veritas/internal/models"
	"github.com/snappy-loop/veritas/internal/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator answers extraction prompts with claims and everything else with verdict.
type fakeGenerator struct {
	claims      string
	verdict     string
	primaryErr  error
	fallbackErr error
	calls       int
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, preferPrimary bool) (string, error) {
	f.calls++
	if preferPrimary && f.primaryErr != nil {
		return "", f.primaryErr
	}
	if !preferPrimary && f.fallbackErr != nil {
		return "", f.fallbackErr
	}
	if strings.Contains(prompt, "Extract clear factual claims") {
		return f.claims, nil
	}
	return f.verdict, nil
}

type fakeSearcher struct {
	perQuery int
	failOn   string
	calls    int
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]models.SearchResult, error) {
	f.calls++
	if query == f.failOn {
		return nil, errors.New("Google Search API failed")
	}
	out := make([]models.SearchResult, f.perQuery)
	for i := range out {
		out[i] = models.SearchResult{
			Title:   fmt.Sprintf("%s %d", query, i),
			Link:    fmt.Sprintf("https://example.org/%d", i),
			Snippet: "snippet text",
		}
	}
	return out, nil
}

type fakeEvents struct {
	requestIDs []string
	errs       []error
}

func (f *fakeEvents) PublishFactCheckEvent(_ context.Context, requestID string, _ *models.FactCheckResponse, err error) error {
	f.requestIDs = append(f.requestIDs, requestID)
	f.errs = append(f.errs, err)
	return nil
}

type fakeSummary struct {
	err error
}

func (f *fakeSummary) Summarize(_ context.Context, content string) (*models.SummarizeResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.SummarizeResponse{Success: true, Summary: "• s", Model: "m", InputLength: len(content), SummaryLength: 3}, nil
}

func (f *fakeSummary) Answer(_ context.Context, question, content string) (*models.QAResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.QAResponse{Success: true, Question: question, Answer: "a", Model: "m", ContentLength: len(content), AnswerLength: 1}, nil
}

type fakeImageDetect struct {
	resp *models.ImageDetectResponse
	err  error
}

func (f *fakeImageDetect) DetectAI(context.Context, string) (*models.ImageDetectResponse, error) {
	return f.resp, f.err
}

type fakeScraper struct {
	err error
}

func (f *fakeScraper) Scrape(_ context.Context, url string) (*models.ScrapeResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ScrapeResponse{Success: true, URL: url, Title: "T", Links: []models.Link{}}, nil
}

func factCheckHandler(gen *fakeGenerator, s *fakeSearcher, events EventPublisher) *Handler {
	p := factcheck.NewPipeline(gen, s, factcheck.Options{})
	return NewHandler(agents.NewFactCheckAgent(p), &fakeSummary{}, &fakeImageDetect{}, &fakeScraper{}, events)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

// TestFactCheck_Success asserts one result per claim, in order, with at most five sources and no snippets.
func TestFactCheck_Success(t *testing.T) {
	gen := &fakeGenerator{claims: "1. Paris is in France.\n2) Water is wet.", verdict: "True."}
	s := &fakeSearcher{perQuery: 7}
	r := factCheckHandler(gen, s, nil).Router(nil)

	rec := do(t, r, http.MethodPost, "/api/factcheck", `{"text":"Paris is in France. Water is wet."}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "snippet")

	var resp models.FactCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Claims, 2)
	assert.Equal(t, "Paris is in France.", resp.Claims[0].Claim)
	assert.Equal(t, "Water is wet.", resp.Claims[1].Claim)
	for _, c := range resp.Claims {
		assert.Equal(t, models.True, c.IsLikelyTrue)
		assert.Len(t, c.SupportingSources, 5)
	}
}

// TestFactCheck_MissingText asserts 400 and no model or search calls.
func TestFactCheck_MissingText(t *testing.T) {
	for _, body := range []string{`{"text":""}`, `{}`, ``} {
		gen := &fakeGenerator{}
		s := &fakeSearcher{}
		r := factCheckHandler(gen, s, nil).Router(nil)

		rec := do(t, r, http.MethodPost, "/api/factcheck", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Text is required", decodeMap(t, rec)["error"])
		assert.Zero(t, gen.calls)
		assert.Zero(t, s.calls)
	}
}

func TestFactCheck_InvalidJSON(t *testing.T) {
	r := factCheckHandler(&fakeGenerator{}, &fakeSearcher{}, nil).Router(nil)

	rec := do(t, r, http.MethodPost, "/api/factcheck", `{"text":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestFactCheck_SearchFailure asserts that a failed search on claim 2 of 3 fails the request without partial claims.
func TestFactCheck_SearchFailure(t *testing.T) {
	gen := &fakeGenerator{claims: "1. A\n2. B\n3. C", verdict: "true"}
	s := &fakeSearcher{perQuery: 2, failOn: "B"}
	events := &fakeEvents{}
	r := factCheckHandler(gen, s, events).Router(nil)

	rec := do(t, r, http.MethodPost, "/api/factcheck", `{"text":"x"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "Fact-checking failed", body["error"])
	assert.Equal(t, "Google Search API failed", body["details"])
	assert.NotContains(t, body, "claims")
	assert.Equal(t, 2, s.calls)

	require.Len(t, events.errs, 1)
	assert.Error(t, events.errs[0])
	assert.NotEmpty(t, events.requestIDs[0])
}

// TestFactCheck_BothModelsFail asserts the 500 details name both model failures.
func TestFactCheck_BothModelsFail(t *testing.T) {
	gen := &fakeGenerator{primaryErr: errors.New("primary quota"), fallbackErr: errors.New("fallback timeout")}
	r := factCheckHandler(gen, &fakeSearcher{}, nil).Router(nil)

	rec := do(t, r, http.MethodPost, "/api/factcheck", `{"text":"x"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	details, _ := decodeMap(t, rec)["details"].(string)
	assert.Contains(t, details, "Both primary and fallback models failed")
	assert.Contains(t, details, "primary quota")
	assert.Contains(t, details, "fallback timeout")
}

func TestFactCheck_UnknownOutcomeIsNull(t *testing.T) {
	gen := &fakeGenerator{claims: "1. A", verdict: "true"}
	p := factcheck.NewPipeline(&validatorDown{gen}, &fakeSearcher{perQuery: 1}, factcheck.Options{})
	r := NewHandler(agents.NewFactCheckAgent(p), nil, nil, nil, nil).Router(nil)

	rec := do(t, r, http.MethodPost, "/api/factcheck", `{"text":"x"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isLikelyTrue":null`)
}

// validatorDown fails every prompt except claim extraction.
type validatorDown struct{ *fakeGenerator }

func (v *validatorDown) Generate(ctx context.Context, prompt string, preferPrimary bool) (string, error) {
	if strings.Contains(prompt, "Extract clear factual claims") {
		return v.fakeGenerator.Generate(ctx, prompt, preferPrimary)
	}
	return "", errors.New("model unavailable")
}

func TestFactCheck_PublishesEventWithRequestID(t *testing.T) {
	events := &fakeEvents{}
	r := factCheckHandler(&fakeGenerator{claims: "1. A", verdict: "false"}, &fakeSearcher{}, events).Router(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/factcheck", strings.NewReader(`{"text":"x"}`))
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, []string{"req-123"}, events.requestIDs)
	assert.Nil(t, events.errs[0])
}

func TestHealth(t *testing.T) {
	r := NewHandler(nil, nil, nil, nil, nil).Router(nil)

	rec := do(t, r, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"status": "OK", "message": "Server is running"}, decodeMap(t, rec))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	r := NewHandler(nil, nil, nil, nil, nil).Router(nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/summarize", nil)
	req.Header.Set("Origin", "https://app.example.org")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "content-type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestUnconfiguredAgent(t *testing.T) {
	r := NewHandler(nil, nil, nil, nil, nil).Router(nil)

	tests := []struct {
		path       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"/api/summarize", `{"content":"x"}`, http.StatusServiceUnavailable, "summarization not configured"},
		{"/api/factcheck", `{"text":"x"}`, http.StatusServiceUnavailable, "fact-checking not configured"},
		{"/api/factcheck", `{}`, http.StatusBadRequest, "Text is required"},
		{"/api/summarize", `{}`, http.StatusBadRequest, "Content is required"},
		{"/api/qa", `{"question":"q"}`, http.StatusBadRequest, "Both question and content are required"},
		{"/api/image-detect-ai", `{}`, http.StatusBadRequest, "Image URL is required"},
		{"/api/scrape", `{}`, http.StatusBadRequest, "URL is required"},
	}
	for _, tt := range tests {
		t.Run(tt.path+" "+tt.body, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"ok", `{"content":"hello"}`, nil, http.StatusOK, ""},
		{"missing", `{}`, nil, http.StatusBadRequest, "Content is required"},
		{"unauthorized", `{"content":"x"}`, fmt.Errorf("%w: 401", llm.ErrChatUnauthorized), http.StatusUnauthorized, "Invalid Groq API key. Please check your configuration."},
		{"rate limited", `{"content":"x"}`, fmt.Errorf("%w: 429", llm.ErrChatRateLimited), http.StatusTooManyRequests, "Rate limit exceeded. Please try again later."},
		{"upstream", `{"content":"x"}`, errors.New("boom"), http.StatusInternalServerError, "Failed to summarize content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewHandler(nil, &fakeSummary{err: tt.err}, nil, nil, nil).Router(nil)

			rec := do(t, r, http.MethodPost, "/api/summarize", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeMap(t, rec)
			if tt.wantError == "" {
				assert.Equal(t, true, body["success"])
				assert.Equal(t, "• s", body["summary"])
				return
			}
			assert.Equal(t, tt.wantError, body["error"])
			if tt.wantStatus != http.StatusBadRequest {
				assert.Equal(t, false, body["success"])
			}
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "boom", body["details"])
			}
		})
	}
}

func TestAnswer(t *testing.T) {
	r := NewHandler(nil, &fakeSummary{}, nil, nil, nil).Router(nil)

	rec := do(t, r, http.MethodPost, "/api/qa", `{"question":"q"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Both question and content are required", decodeMap(t, rec)["error"])

	rec = do(t, r, http.MethodPost, "/api/qa", `{"question":"q","content":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "q", body["question"])
	assert.Equal(t, float64(3), body["content_length"])

	r = NewHandler(nil, &fakeSummary{err: errors.New("down")}, nil, nil, nil).Router(nil)
	rec = do(t, r, http.MethodPost, "/api/qa", `{"question":"q","content":"abc"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to answer question", decodeMap(t, rec)["error"])
}

func TestDetectImageAI(t *testing.T) {
	pct := 42
	tests := []struct {
		name       string
		body       string
		detect     *fakeImageDetect
		wantStatus int
		wantError  string
	}{
		{"ok", `{"url":"https://x/cat.png"}`, &fakeImageDetect{resp: &models.ImageDetectResponse{AILikelihoodPercent: &pct, RawModelReply: "42"}}, http.StatusOK, ""},
		{"missing", `{}`, &fakeImageDetect{}, http.StatusBadRequest, "Image URL is required"},
		{"not image", `{"url":"u"}`, &fakeImageDetect{err: media.ErrNotImage}, http.StatusBadRequest, "Invalid image format."},
		{"too large inline", `{"url":"u"}`, &fakeImageDetect{err: llm.ErrImageTooLarge}, http.StatusBadRequest, "Image too large for direct upload. Use NVIDIA assets API."},
		{"too large download", `{"url":"u"}`, &fakeImageDetect{err: media.ErrTooLarge}, http.StatusBadRequest, "Image too large for direct upload. Use NVIDIA assets API."},
		{"upstream", `{"url":"u"}`, &fakeImageDetect{err: errors.New("status 404")}, http.StatusInternalServerError, "Image detection failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewHandler(nil, nil, tt.detect, nil, nil).Router(nil)

			rec := do(t, r, http.MethodPost, "/api/image-detect-ai", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeMap(t, rec)
			if tt.wantError == "" {
				assert.Equal(t, float64(42), body["aiLikelihoodPercent"])
				assert.Equal(t, "42", body["rawModelReply"])
				return
			}
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestDetectImageAI_NullLikelihood(t *testing.T) {
	r := NewHandler(nil, nil, &fakeImageDetect{resp: &models.ImageDetectResponse{RawModelReply: "unsure"}}, nil, nil).Router(nil)

	rec := do(t, r, http.MethodPost, "/api/image-detect-ai", `{"url":"u"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"aiLikelihoodPercent":null`)
}

func TestScrape(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"ok", `{"url":"https://example.org"}`, nil, http.StatusOK},
		{"missing", `{}`, nil, http.StatusBadRequest},
		{"invalid", `{"url":"ftp://x"}`, scrape.ErrInvalidURL, http.StatusBadRequest},
		{"robots", `{"url":"https://example.org/private"}`, scrape.ErrDisallowed, http.StatusForbidden},
		{"upstream", `{"url":"https://example.org"}`, errors.New("status 500"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewHandler(nil, nil, nil, &fakeScraper{err: tt.err}, nil).Router(nil)

			rec := do(t, r, http.MethodPost, "/api/scrape", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}
