package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/snappy-loop/veritas/internal/llm"
	"github.com/snappy-loop/veritas/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	reply string
	err   error
}

func (f *fakeChat) Summarize(context.Context, string) (string, error) { return f.reply, f.err }

func (f *fakeChat) Answer(context.Context, string, string) (string, error) { return f.reply, f.err }

func (f *fakeChat) Model() string { return "llama3-8b-8192" }

type fakeFetcher struct {
	img *media.Image
	err error
}

func (f *fakeFetcher) Fetch(context.Context, string) (*media.Image, error) { return f.img, f.err }

type fakeScorer struct {
	reply    string
	err      error
	gotMIME  string
	gotBytes int
}

func (f *fakeScorer) ScoreImage(_ context.Context, mimeType string, data []byte) (string, error) {
	f.gotMIME = mimeType
	f.gotBytes = len(data)
	return f.reply, f.err
}

func (f *fakeScorer) Model() string { return "vision" }

func TestSummaryAgent_Summarize(t *testing.T) {
	a := NewSummaryAgent(&fakeChat{reply: "• one\n• two"})

	resp, err := a.Summarize(context.Background(), "héllo wörld")

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "llama3-8b-8192", resp.Model)
	assert.Equal(t, 11, resp.InputLength)
	assert.Equal(t, 11, resp.SummaryLength)
}

func TestSummaryAgent_Answer(t *testing.T) {
	a := NewSummaryAgent(&fakeChat{reply: "Paris"})

	resp, err := a.Answer(context.Background(), "Capital?", "France's capital is Paris.")

	require.NoError(t, err)
	assert.Equal(t, "Capital?", resp.Question)
	assert.Equal(t, "Paris", resp.Answer)
	assert.Equal(t, 26, resp.ContentLength)
	assert.Equal(t, 5, resp.AnswerLength)
}

func TestSummaryAgent_PropagatesError(t *testing.T) {
	a := NewSummaryAgent(&fakeChat{err: llm.ErrChatRateLimited})

	_, err := a.Summarize(context.Background(), "x")

	assert.ErrorIs(t, err, llm.ErrChatRateLimited)
}

func TestImageDetectAgent(t *testing.T) {
	scorer := &fakeScorer{reply: "85"}
	a := NewImageDetectAgent(&fakeFetcher{img: &media.Image{MIMEType: "image/png", Data: []byte{1, 2, 3}}}, scorer)

	resp, err := a.DetectAI(context.Background(), "https://example.org/cat.png")

	require.NoError(t, err)
	require.NotNil(t, resp.AILikelihoodPercent)
	assert.Equal(t, 85, *resp.AILikelihoodPercent)
	assert.Equal(t, "85", resp.RawModelReply)
	assert.Equal(t, "image/png", scorer.gotMIME)
	assert.Equal(t, 3, scorer.gotBytes)
}

func TestImageDetectAgent_NoNumber(t *testing.T) {
	a := NewImageDetectAgent(&fakeFetcher{img: &media.Image{MIMEType: "image/png"}}, &fakeScorer{reply: "cannot tell"})

	resp, err := a.DetectAI(context.Background(), "u")

	require.NoError(t, err)
	assert.Nil(t, resp.AILikelihoodPercent)
}

func TestImageDetectAgent_Errors(t *testing.T) {
	scorer := &fakeScorer{}
	a := NewImageDetectAgent(&fakeFetcher{err: media.ErrNotImage}, scorer)
	_, err := a.DetectAI(context.Background(), "u")
	assert.ErrorIs(t, err, media.ErrNotImage)
	assert.Empty(t, scorer.gotMIME)

	a = NewImageDetectAgent(&fakeFetcher{img: &media.Image{MIMEType: "image/png"}}, &fakeScorer{err: errors.New("upstream 500")})
	_, err = a.DetectAI(context.Background(), "u")
	assert.EqualError(t, err, "upstream 500")
}
