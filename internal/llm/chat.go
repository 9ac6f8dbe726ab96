package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

var (
	// ErrChatUnauthorized is wrapped when the chat provider rejects the API key (HTTP 401).
	ErrChatUnauthorized = errors.New("chat provider rejected the API key")
	// ErrChatRateLimited is wrapped when the chat provider throttles the call (HTTP 429).
	ErrChatRateLimited = errors.New("chat provider rate limit exceeded")
	// ErrEmptyChatResponse is returned when the provider answers without choices.
	ErrEmptyChatResponse = errors.New("no response from chat model")
)

const summarizeSystemPrompt = "You are an expert content summarizer. Always provide summaries in clear, concise bullet points."

const summarizeUserPrompt = `
Please summarize the following content in the form of clear, concise bullet points. Focus on the key points, main ideas, and important details. Make the summary easy to read and understand:

"""%s"""

Provide the summary in bullet point format only.`

const answerSystemPrompt = "You are an expert AI assistant that answers questions based on the provided content. Provide clear, accurate, and helpful answers. If the content doesn't contain enough information to answer the question, say so. Always base your answers on the given content."

const answerUserPrompt = `
Question: %s

Content to analyze:
"""%s"""

Please provide a clear and accurate answer based on the content above. If the content doesn't contain enough information to answer the question completely, acknowledge this limitation.`

// ChatClient talks to an OpenAI-compatible chat completion API (Groq by default).
type ChatClient struct {
	client *openai.Client
	model  string
}

// NewChatClient creates a chat client. baseURL may be empty for the OpenAI default.
func NewChatClient(apiKey, baseURL, model string) *ChatClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	log.Info().
		Str("base_url", cfg.BaseURL).
		Str("model", model).
		Msg("Chat client initialized")

	return &ChatClient{client: openai.NewClientWithConfig(cfg), model: model}
}

// Model returns the chat model identifier.
func (c *ChatClient) Model() string {
	return c.model
}

// Summarize returns a bullet-point summary of content.
func (c *ChatClient) Summarize(ctx context.Context, content string) (string, error) {
	return c.complete(ctx, summarizeSystemPrompt, fmt.Sprintf(summarizeUserPrompt, content))
}

// Answer answers question using only content.
func (c *ChatClient) Answer(ctx context.Context, question, content string) (string, error) {
	return c.complete(ctx, answerSystemPrompt, fmt.Sprintf(answerUserPrompt, question, content))
}

func (c *ChatClient) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", classifyChatError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyChatResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classifyChatError tags 401 and 429 responses so handlers can mirror them.
func classifyChatError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrChatUnauthorized, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrChatRateLimited, err)
	default:
		return err
	}
}
