package agents

import (
	"context"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/models"
)

// Chat is the chat-model surface the summary agent needs. *llm.ChatClient implements it.
type Chat interface {
	Summarize(ctx context.Context, content string) (string, error)
	Answer(ctx context.Context, question, content string) (string, error)
	Model() string
}

// SummaryAgentImpl builds summary and Q&A responses from a chat model.
type SummaryAgentImpl struct {
	Chat Chat
}

// NewSummaryAgent returns a SummaryAgent backed by chat.
func NewSummaryAgent(chat Chat) SummaryAgent {
	return &SummaryAgentImpl{Chat: chat}
}

// Summarize returns a bullet-point summary. Lengths are counted in characters.
func (a *SummaryAgentImpl) Summarize(ctx context.Context, content string) (*models.SummarizeResponse, error) {
	summary, err := a.Chat.Summarize(ctx, content)
	if err != nil {
		return nil, err
	}
	log.Info().Str("model", a.Chat.Model()).Str("summary", truncate(summary, 100)).Msg("Summary generated")
	return &models.SummarizeResponse{
		Success:       true,
		Summary:       summary,
		Model:         a.Chat.Model(),
		InputLength:   utf8.RuneCountInString(content),
		SummaryLength: utf8.RuneCountInString(summary),
	}, nil
}

// Answer answers question from content.
func (a *SummaryAgentImpl) Answer(ctx context.Context, question, content string) (*models.QAResponse, error) {
	answer, err := a.Chat.Answer(ctx, question, content)
	if err != nil {
		return nil, err
	}
	log.Info().Str("model", a.Chat.Model()).Str("answer", truncate(answer, 100)).Msg("Answer generated")
	return &models.QAResponse{
		Success:       true,
		Question:      question,
		Answer:        answer,
		Model:         a.Chat.Model(),
		ContentLength: utf8.RuneCountInString(content),
		AnswerLength:  utf8.RuneCountInString(answer),
	}, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
