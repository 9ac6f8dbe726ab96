package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

// maxInlineImageBase64 is the largest base64 payload the NVIDIA endpoint accepts inline.
const maxInlineImageBase64 = 180000

const aiLikelihoodPrompt = "On a scale of 0 to 100, what is the likelihood that this image is AI-generated? Return only the number."

var (
	// ErrImageTooLarge is returned when an image cannot be sent inline to the vision model.
	ErrImageTooLarge = errors.New("image too large for direct upload")
	// ErrEmptyVisionResponse is returned when the vision provider answers without choices or candidates.
	ErrEmptyVisionResponse = errors.New("no response from vision model")
)

var likelihoodRe = regexp.MustCompile(`(\d{1,3})`)

// ImageScorer asks a vision model how likely an image is AI-generated and returns the raw reply.
type ImageScorer interface {
	ScoreImage(ctx context.Context, mimeType string, data []byte) (string, error)
	Model() string
}

// ParseLikelihood extracts the first 1-3 digit number from a model reply, capped at 100.
// Returns nil when the reply has no number.
func ParseLikelihood(reply string) *int {
	m := likelihoodRe.FindStringSubmatch(reply)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	if n > 100 {
		n = 100
	}
	return &n
}

// NvidiaVision scores images with a vision model behind NVIDIA's OpenAI-compatible API.
// The image travels inline as a data URI inside the prompt.
type NvidiaVision struct {
	client *openai.Client
	model  string
}

// NewNvidiaVision creates the NVIDIA-backed scorer.
func NewNvidiaVision(apiKey, baseURL, model string) *NvidiaVision {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	log.Info().Str("base_url", cfg.BaseURL).Str("model", model).Msg("NVIDIA vision client initialized")
	return &NvidiaVision{client: openai.NewClientWithConfig(cfg), model: model}
}

// Model returns the vision model identifier.
func (v *NvidiaVision) Model() string { return v.model }

// ScoreImage implements ImageScorer.
func (v *NvidiaVision) ScoreImage(ctx context.Context, mimeType string, data []byte) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(data)
	if len(encoded) > maxInlineImageBase64 {
		return "", ErrImageTooLarge
	}

	content := fmt.Sprintf("%s\n<img src=\"data:%s;base64,%s\" />", aiLikelihoodPrompt, mimeType, encoded)
	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       v.model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: content}},
		MaxTokens:   10,
		Temperature: 0.2,
		TopP:        0.7,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("nvidia vision: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyVisionResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GeminiVision scores images by sending them as blobs to a Gemini vision model.
type GeminiVision struct {
	client *genai.Client
	model  string
}

// NewGeminiVision creates the Gemini-backed scorer. apiEndpoint may be empty.
func NewGeminiVision(ctx context.Context, apiKey, apiEndpoint, model string) (*GeminiVision, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(apiEndpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	log.Info().Str("model", model).Msg("Gemini vision client initialized")
	return &GeminiVision{client: client, model: model}, nil
}

// Model returns the vision model identifier.
func (v *GeminiVision) Model() string { return v.model }

// ScoreImage implements ImageScorer.
func (v *GeminiVision) ScoreImage(ctx context.Context, mimeType string, data []byte) (string, error) {
	model := v.client.GenerativeModel(v.model)
	model.SetTemperature(0.2)
	model.SetTopP(0.7)
	model.SetMaxOutputTokens(10)

	resp, err := model.GenerateContent(ctx, genai.Text(aiLikelihoodPrompt), genai.Blob{MIMEType: mimeType, Data: data})
	if err != nil {
		return "", fmt.Errorf("gemini vision failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyVisionResponse
	}

	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				result.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(result.String()), nil
}

// Close releases the underlying genai client.
func (v *GeminiVision) Close() error {
	return v.client.Close()
}
