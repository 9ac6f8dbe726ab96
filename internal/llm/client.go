package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// maxGeminiResponseLogBytes is the max length of a Gemini response body to log in full (to avoid huge logs).
const maxGeminiResponseLogBytes = 8192

// ErrModelNotInitialized is wrapped in a ModelInvocationError when a model failed to construct at startup.
var ErrModelNotInitialized = errors.New("model not initialized")

// ModelInvocationError is returned when a single model call fails.
type ModelInvocationError struct {
	Model string
	Err   error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Model, e.Err)
}

func (e *ModelInvocationError) Unwrap() error { return e.Err }

// httpClientForEndpoint returns an http.Client that rewrites request URLs to the given base endpoint (e.g. http://localhost:31300/gemini).
func httpClientForEndpoint(baseEndpoint string) *http.Client {
	base, err := url.Parse(baseEndpoint)
	if err != nil || base.Host == "" {
		log.Warn().Err(err).Str("endpoint", baseEndpoint).Msg("Invalid GEMINI_API_ENDPOINT, using default")
		return nil
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	return &http.Client{
		Transport: &endpointRoundTripper{base: base, next: http.DefaultTransport},
	}
}

// endpointRoundTripper rewrites request URLs to a custom base (scheme, host, path prefix).
type endpointRoundTripper struct {
	base *url.URL
	next http.RoundTripper
}

func (e *endpointRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	req2.URL.Scheme = e.base.Scheme
	req2.URL.Host = e.base.Host
	req2.URL.Path = path.Join(e.base.Path, strings.TrimPrefix(req.URL.Path, "/"))
	req2.Host = e.base.Host
	return e.next.RoundTrip(req2)
}

// logGeminiResponse logs Gemini response text, truncating if over maxGeminiResponseLogBytes.
func logGeminiResponse(model, raw string) {
	if len(raw) <= maxGeminiResponseLogBytes {
		log.Info().Str("model", model).Str("gemini_response", raw).Msg("Gemini response")
		return
	}
	log.Info().
		Str("model", model).
		Str("gemini_response", raw[:maxGeminiResponseLogBytes]+"... [truncated]").
		Int("gemini_response_len", len(raw)).
		Msg("Gemini response")
}

// Client wraps the Gemini text models used by the fact-check pipeline.
// It holds one primary and one fallback model; choosing between them is the caller's job.
type Client struct {
	modelPrimary  string // e.g. gemini-2.0-flash-exp
	modelFallback string // e.g. gemini-1.5-flash
	llmPrimary    llms.Model
	llmFallback   llms.Model
}

// NewClient creates the Gemini client.
// apiEndpoint: optional Gemini API base URL; when set, all calls go through it.
// A model that fails to initialize is logged and reported on every call as ErrModelNotInitialized.
func NewClient(ctx context.Context, apiKey, apiEndpoint, modelPrimary, modelFallback string) *Client {
	var httpClient *http.Client
	if apiEndpoint != "" {
		httpClient = httpClientForEndpoint(apiEndpoint)
	}

	newModel := func(name string) llms.Model {
		opts := []googleai.Option{googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(name)}
		if httpClient != nil {
			opts = append(opts, googleai.WithHTTPClient(httpClient))
		}
		m, err := googleai.New(ctx, opts...)
		if err != nil {
			log.Error().Err(err).Str("model", name).Msg("Failed to initialize Gemini model")
			return nil
		}
		return m
	}

	c := NewClientWithModels(modelPrimary, newModel(modelPrimary), modelFallback, newModel(modelFallback))

	log.Info().
		Str("model_primary", modelPrimary).
		Str("model_fallback", modelFallback).
		Str("api_endpoint", apiEndpoint).
		Bool("primary_ready", c.llmPrimary != nil).
		Bool("fallback_ready", c.llmFallback != nil).
		Msg("LLM client initialized")

	return c
}

// NewClientWithModels builds a Client around already constructed models.
func NewClientWithModels(primaryName string, primary llms.Model, fallbackName string, fallback llms.Model) *Client {
	return &Client{
		modelPrimary:  primaryName,
		modelFallback: fallbackName,
		llmPrimary:    primary,
		llmFallback:   fallback,
	}
}

// Generate sends prompt to the primary model when preferPrimary is true, otherwise to the fallback.
// There is no retry here; failures come back as *ModelInvocationError.
func (c *Client) Generate(ctx context.Context, prompt string, preferPrimary bool) (string, error) {
	name, model := c.modelPrimary, c.llmPrimary
	if !preferPrimary {
		name, model = c.modelFallback, c.llmFallback
	}
	if model == nil {
		return "", &ModelInvocationError{Model: name, Err: ErrModelNotInitialized}
	}

	log.Debug().
		Str("model", name).
		Bool("primary", preferPrimary).
		Int("prompt_len", len(prompt)).
		Msg("Invoking Gemini model")

	out, err := llms.GenerateFromSinglePrompt(ctx, model, prompt)
	if err != nil {
		return "", &ModelInvocationError{Model: name, Err: err}
	}
	logGeminiResponse(name, out)
	return out, nil
}

// ModelName returns the identifier used for the given tier.
func (c *Client) ModelName(primary bool) string {
	if primary {
		return c.modelPrimary
	}
	return c.modelFallback
}
